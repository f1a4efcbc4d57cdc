package forecast

import (
	"futureflow/internal/core"
)

const (
	// DefaultHorizonDays covers the eight-week outlook with headroom.
	DefaultHorizonDays = 60

	// installmentWindowMonths is how many upcoming payment days an
	// unpaid installment debt is projected for.
	installmentWindowMonths = 3
)

type Origin string

const (
	OriginOneOff        Origin = "one-off"
	OriginRecurring     Origin = "recurring"
	OriginInstallment   Origin = "installment-debt"
	OriginCardStatement Origin = "card-statement"
)

// Obligation is a single projected cash outflow. Obligations are
// synthesized transiently by BuildObligations and never persisted.
type Obligation struct {
	Date        core.Date
	Amount      core.Money
	SourceLabel string
	Origin      Origin
}

// Calendar is a sparse date-to-amount map. Dates with no obligations
// are absent, not present with a zero value; the distinction drives
// the no-predetermined-expense display state.
type Calendar map[core.Date]core.Money

func (c Calendar) add(d core.Date, amount core.Money) {
	c[d] = c[d].Add(amount)
}

// Snapshot is the read-only input set the builder projects from. The
// engine never mutates it, so concurrent invocations over the same
// snapshot are safe.
type Snapshot struct {
	Transactions []core.Transaction
	Recurring    []core.RecurringItem
	Debts        []core.InstallmentDebt
	Cards        []core.CardConfig
}

// BuildCalendar merges the four obligation sources into a single
// date-indexed outflow map over (now, now+horizonDays].
func BuildCalendar(s Snapshot, now core.Date, horizonDays int) Calendar {
	cal := Calendar{}
	for _, ob := range BuildObligations(s, now, horizonDays) {
		cal.add(ob.Date, ob.Amount)
	}
	return cal
}

// BuildObligations projects each source and returns the individual
// obligation lines, ordered by source kind then input order.
func BuildObligations(s Snapshot, now core.Date, horizonDays int) []Obligation {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	end := now.AddDays(horizonDays)
	cards := cardIndex(s.Cards)

	var obs []Obligation
	obs = append(obs, oneOffObligations(s.Transactions, cards, now, end)...)
	obs = append(obs, statementObligations(s.Transactions, s.Cards, now, end)...)
	obs = append(obs, recurringObligations(s.Recurring, cards, now, horizonDays)...)
	obs = append(obs, installmentObligations(s.Debts, now, end)...)
	return obs
}

func cardIndex(cards []core.CardConfig) map[string]core.CardConfig {
	idx := make(map[string]core.CardConfig, len(cards))
	for _, c := range cards {
		idx[c.ID] = c
	}
	return idx
}

// oneOffObligations routes future card-routed expenses through the
// billing-cycle resolver. Cash-routed expenses are assumed already
// settled and never projected; transactions dated up to "now" are
// counted once in the outstanding statement balance instead.
func oneOffObligations(txs []core.Transaction, cards map[string]core.CardConfig, now, end core.Date) []Obligation {
	var obs []Obligation
	for _, t := range txs {
		if t.Kind != core.Expense || !t.Route.IsCard() || !t.Date.After(now) {
			continue
		}
		card, ok := cards[t.Route.CardID]
		if !ok {
			continue
		}
		due := ResolveStatementDate(t.Date, card)
		if !due.After(now) || due.After(end) {
			continue
		}
		label := t.Note
		if label == "" {
			label = t.Category
		}
		obs = append(obs, Obligation{Date: due, Amount: t.Amount, SourceLabel: label, Origin: OriginOneOff})
	}
	return obs
}

// statementObligations projects the running balance of card-routed
// expenses to date once onto each card's next resolved statement date.
func statementObligations(txs []core.Transaction, cards []core.CardConfig, now, end core.Date) []Obligation {
	balances := make(map[string]int64)
	for _, t := range txs {
		if t.Kind == core.Expense && t.Route.IsCard() && !t.Date.After(now) {
			balances[t.Route.CardID] += t.Amount.Cents
		}
	}

	var obs []Obligation
	for _, card := range cards {
		bal := balances[card.ID]
		if bal <= 0 {
			continue
		}
		due := ResolveStatementDate(now, card)
		if !due.After(now) || due.After(end) {
			continue
		}
		obs = append(obs, Obligation{
			Date:        due,
			Amount:      core.Money{Cents: bal},
			SourceLabel: card.Name + " statement",
			Origin:      OriginCardStatement,
		})
	}
	return obs
}

// recurringObligations walks every day of the window and fires each
// expense item whose day-of-month matches after last-day clamping.
// Card-routed items fire on the card's payment day instead of their
// own day-of-month.
func recurringObligations(items []core.RecurringItem, cards map[string]core.CardConfig, now core.Date, horizonDays int) []Obligation {
	var obs []Obligation
	for offset := 0; offset <= horizonDays; offset++ {
		day := now.AddDays(offset)
		last := core.DaysIn(day.Year(), day.Month())
		for _, item := range items {
			if item.Kind != core.Expense {
				continue
			}
			fireDay := item.DayOfMonth
			if item.Route.IsCard() {
				if card, ok := cards[item.Route.CardID]; ok {
					fireDay = card.PaymentDay
				}
			}
			if fireDay > last {
				fireDay = last
			}
			if day.Day() == fireDay {
				obs = append(obs, Obligation{
					Date:        day,
					Amount:      item.Amount,
					SourceLabel: item.Description,
					Origin:      OriginRecurring,
				})
			}
		}
	}
	return obs
}

// installmentObligations projects each unpaid debt's payment day for a
// fixed short window of upcoming months, strictly after "now".
func installmentObligations(debts []core.InstallmentDebt, now, end core.Date) []Obligation {
	var obs []Obligation
	for _, debt := range debts {
		if debt.IsPaidThisMonth {
			continue
		}
		for i := 0; i < installmentWindowMonths; i++ {
			due := core.ClampedDate(now.Year(), int(now.Month())+i, debt.PaymentDay)
			if !due.After(now) || due.After(end) {
				continue
			}
			obs = append(obs, Obligation{
				Date:        due,
				Amount:      debt.MonthlyAmount,
				SourceLabel: debt.CardName + " installment",
				Origin:      OriginInstallment,
			})
		}
	}
	return obs
}
