// Package allocation implements the three-tier income disbursement
// waterfall and the confirmation protocol that commits an accepted
// proposal to savings goal balances.
package allocation

import (
	"futureflow/internal/core"
)

// DefaultReserveDays is the living-reserve horizon when the caller
// does not supply one.
const DefaultReserveDays = 7

// DebtLine is one survival-tier entry. Order is caller-determined and
// preserved; it is part of the contract.
type DebtLine struct {
	Label  string
	Amount core.Money
}

// GoalLine is one strategic-tier disbursement.
type GoalLine struct {
	GoalName string
	Amount   core.Money
}

// Proposal is the waterfall's output. It is transient: it exists until
// confirmed or discarded and is never persisted as-is.
type Proposal struct {
	IncomeAmount  core.Money
	Survival      []DebtLine
	LivingReserve core.Money
	Strategic     []GoalLine
	FreeCash      core.Money
}

// SurvivalTotal sums the survival-tier lines.
func (p Proposal) SurvivalTotal() core.Money {
	var total int64
	for _, line := range p.Survival {
		total += line.Amount.Cents
	}
	return core.Money{Cents: total}
}

// StrategicTotal sums the strategic-tier lines.
func (p Proposal) StrategicTotal() core.Money {
	var total int64
	for _, line := range p.Strategic {
		total += line.Amount.Cents
	}
	return core.Money{Cents: total}
}

// ConservesIncome reports whether the four tiers sum exactly back to
// the income amount. This holds for every proposal the engine produces
// or edits; free cash absorbs any residual.
func (p Proposal) ConservesIncome() bool {
	return p.SurvivalTotal().Cents+p.LivingReserve.Cents+p.StrategicTotal().Cents+p.FreeCash.Cents == p.IncomeAmount.Cents
}

// Allocate runs the three-tier waterfall over a single income amount.
// Each tier consumes from what the prior tier left and never revisits
// it. The function is total for any non-negative income and any
// (possibly empty) debt or goal list, and is deterministic: identical
// inputs, including list order, produce identical proposals.
func Allocate(income core.Money, debts []DebtLine, goals []core.SavingsGoal, reserveDays int, dailyBaseline core.Money) Proposal {
	if reserveDays <= 0 {
		reserveDays = DefaultReserveDays
	}

	p := Proposal{IncomeAmount: income}
	remaining := income.Cents

	// Tier 1: survival debts, caller order, no re-sorting.
	for _, debt := range debts {
		if remaining <= 0 {
			break
		}
		pay := min64(remaining, debt.Amount.Cents)
		if pay > 0 {
			p.Survival = append(p.Survival, DebtLine{Label: debt.Label, Amount: core.Money{Cents: pay}})
			remaining -= pay
		}
	}

	// Tier 2: living reserve.
	livingNeeds := int64(reserveDays) * dailyBaseline.Cents
	reserve := min64(remaining, livingNeeds)
	p.LivingReserve = core.Money{Cents: reserve}
	remaining -= reserve

	// Tier 3: strategic goals. Every goal's share is floored against
	// the pre-tier remainder, not a shrinking base, and the summed
	// total is subtracted once to avoid compounding rounding.
	if remaining > 0 {
		base := remaining
		var total int64
		for _, goal := range goals {
			if goal.AllocationPercentage <= 0 {
				continue
			}
			pay := base * int64(goal.AllocationPercentage) / 100
			if pay > 0 {
				p.Strategic = append(p.Strategic, GoalLine{GoalName: goal.Name, Amount: core.Money{Cents: pay}})
				total += pay
			}
		}
		remaining -= total
	}

	p.FreeCash = core.Money{Cents: remaining}
	return p
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
