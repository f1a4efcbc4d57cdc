package allocation

import (
	"reflect"
	"testing"

	"futureflow/internal/core"
)

func cents(n int64) core.Money { return core.Money{Cents: n} }

func goal(name string, pct int) core.SavingsGoal {
	return core.SavingsGoal{ID: name, Name: name, TargetAmount: cents(1_000_000_00), AllocationPercentage: pct}
}

func TestAllocateEndToEnd(t *testing.T) {
	// income 50,000; one debt of 10,000; reserve 7*500=3,500; one goal
	// at 20% of the 36,500 remainder = 7,300; free cash 29,200.
	p := Allocate(
		cents(50_000_00),
		[]DebtLine{{Label: "Everyday installment", Amount: cents(10_000_00)}},
		[]core.SavingsGoal{goal("Japan trip", 20)},
		7, cents(500_00),
	)

	if len(p.Survival) != 1 || p.Survival[0].Amount.Cents != 10_000_00 {
		t.Fatalf("survival = %+v, want one line of 1000000", p.Survival)
	}
	if p.LivingReserve.Cents != 3_500_00 {
		t.Fatalf("living reserve = %d, want 350000", p.LivingReserve.Cents)
	}
	if len(p.Strategic) != 1 || p.Strategic[0].Amount.Cents != 7_300_00 {
		t.Fatalf("strategic = %+v, want one line of 730000", p.Strategic)
	}
	if p.FreeCash.Cents != 29_200_00 {
		t.Fatalf("free cash = %d, want 2920000", p.FreeCash.Cents)
	}
	if !p.ConservesIncome() {
		t.Fatalf("conservation violated: %+v", p)
	}
}

func TestAllocateEmptyState(t *testing.T) {
	// income 1,000; no debts, no goals: the whole amount is swallowed
	// by the living reserve (min(1000, 3500)) and free cash is zero.
	p := Allocate(cents(1_000_00), nil, nil, 7, cents(500_00))

	if len(p.Survival) != 0 {
		t.Fatalf("survival = %+v, want empty", p.Survival)
	}
	if p.LivingReserve.Cents != 1_000_00 {
		t.Fatalf("living reserve = %d, want 100000", p.LivingReserve.Cents)
	}
	if len(p.Strategic) != 0 {
		t.Fatalf("strategic = %+v, want empty", p.Strategic)
	}
	if p.FreeCash.Cents != 0 {
		t.Fatalf("free cash = %d, want 0", p.FreeCash.Cents)
	}
	if !p.ConservesIncome() {
		t.Fatalf("conservation violated: %+v", p)
	}
}

func TestAllocateZeroIncome(t *testing.T) {
	p := Allocate(cents(0),
		[]DebtLine{{Label: "d", Amount: cents(500_00)}},
		[]core.SavingsGoal{goal("g", 50)},
		7, cents(500_00))

	if len(p.Survival) != 0 || p.LivingReserve.Cents != 0 || len(p.Strategic) != 0 || p.FreeCash.Cents != 0 {
		t.Fatalf("zero income should allocate nothing: %+v", p)
	}
	if !p.ConservesIncome() {
		t.Fatalf("conservation violated: %+v", p)
	}
}

func TestAllocateSurvivalPartialCoverage(t *testing.T) {
	// Income runs out mid-tier: the second debt gets the remainder,
	// the third gets no line at all.
	p := Allocate(cents(1_500_00),
		[]DebtLine{
			{Label: "first", Amount: cents(1_000_00)},
			{Label: "second", Amount: cents(2_000_00)},
			{Label: "third", Amount: cents(500_00)},
		},
		nil, 7, cents(500_00))

	want := []DebtLine{
		{Label: "first", Amount: cents(1_000_00)},
		{Label: "second", Amount: cents(500_00)},
	}
	if !reflect.DeepEqual(p.Survival, want) {
		t.Fatalf("survival = %+v, want %+v", p.Survival, want)
	}
	if p.LivingReserve.Cents != 0 || p.FreeCash.Cents != 0 {
		t.Fatalf("nothing should remain past survival: %+v", p)
	}
	if !p.ConservesIncome() {
		t.Fatalf("conservation violated: %+v", p)
	}
}

func TestAllocateSurvivalOrderPreserved(t *testing.T) {
	debts := []DebtLine{
		{Label: "zeta", Amount: cents(100_00)},
		{Label: "alpha", Amount: cents(100_00)},
		{Label: "mid", Amount: cents(100_00)},
	}
	p := Allocate(cents(10_000_00), debts, nil, 7, cents(0))

	for i, want := range []string{"zeta", "alpha", "mid"} {
		if p.Survival[i].Label != want {
			t.Fatalf("survival order changed: %+v", p.Survival)
		}
	}
}

func TestAllocateStrategicFixedBase(t *testing.T) {
	// Both goals are computed against the same pre-tier remainder of
	// 10,000, not a shrinking base: 3,000 and 2,000, never 3,000 and
	// 1,400.
	p := Allocate(cents(10_000_00), nil,
		[]core.SavingsGoal{goal("a", 30), goal("b", 20)},
		7, cents(0))

	if p.Strategic[0].Amount.Cents != 3_000_00 || p.Strategic[1].Amount.Cents != 2_000_00 {
		t.Fatalf("strategic = %+v, want 300000 and 200000", p.Strategic)
	}
	if p.FreeCash.Cents != 5_000_00 {
		t.Fatalf("free cash = %d, want 500000", p.FreeCash.Cents)
	}
}

func TestAllocateStrategicFloorRounding(t *testing.T) {
	// 33% of 100.01 is 33.0033 -> floored to 3300 cents.
	p := Allocate(cents(100_01), nil, []core.SavingsGoal{goal("g", 33)}, 7, cents(0))
	if p.Strategic[0].Amount.Cents != 3300 {
		t.Fatalf("strategic = %d, want 3300", p.Strategic[0].Amount.Cents)
	}
	if !p.ConservesIncome() {
		t.Fatalf("conservation violated: %+v", p)
	}
}

func TestAllocateZeroPercentageGoalSkipped(t *testing.T) {
	p := Allocate(cents(10_000_00), nil,
		[]core.SavingsGoal{goal("idle", 0), goal("active", 10)},
		7, cents(0))
	if len(p.Strategic) != 1 || p.Strategic[0].GoalName != "active" {
		t.Fatalf("strategic = %+v, want only the active goal", p.Strategic)
	}
}

func TestAllocateDeterminism(t *testing.T) {
	debts := []DebtLine{{Label: "d1", Amount: cents(123_45)}, {Label: "d2", Amount: cents(678_90)}}
	goals := []core.SavingsGoal{goal("a", 17), goal("b", 41)}

	first := Allocate(cents(7_777_77), debts, goals, 7, cents(321_00))
	second := Allocate(cents(7_777_77), debts, goals, 7, cents(321_00))

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different proposals:\n%+v\n%+v", first, second)
	}
}

func TestAllocateConservationSweep(t *testing.T) {
	// Conservation and survival bounds over a grid of inputs.
	incomes := []int64{0, 1, 99, 100_00, 1_234_56, 50_000_00}
	debtSets := [][]DebtLine{
		nil,
		{{Label: "a", Amount: cents(10_00)}},
		{{Label: "a", Amount: cents(10_000_00)}, {Label: "b", Amount: cents(5_000_00)}},
	}
	goalSets := [][]core.SavingsGoal{
		nil,
		{goal("x", 20)},
		{goal("x", 33), goal("y", 33), goal("z", 34)},
	}

	for _, income := range incomes {
		for _, debts := range debtSets {
			for _, goals := range goalSets {
				p := Allocate(cents(income), debts, goals, 7, cents(500_00))
				if !p.ConservesIncome() {
					t.Fatalf("conservation violated for income=%d debts=%v goals=%v: %+v",
						income, debts, goals, p)
				}
				if p.SurvivalTotal().Cents > income {
					t.Fatalf("survival exceeds income for income=%d: %+v", income, p)
				}
				for i, line := range p.Survival {
					if line.Amount.Cents > debts[i].Amount.Cents {
						t.Fatalf("survival line exceeds debt: %+v vs %+v", line, debts[i])
					}
				}
				if p.FreeCash.Cents < 0 {
					t.Fatalf("unedited proposal has negative free cash: %+v", p)
				}
			}
		}
	}
}

func TestAllocateStrategicMonotonicity(t *testing.T) {
	// Raising one goal's percentage never lowers its disbursement.
	prev := int64(-1)
	for pct := 0; pct <= 100; pct++ {
		p := Allocate(cents(36_500_00), nil, []core.SavingsGoal{goal("g", pct)}, 7, cents(0))
		var got int64
		if len(p.Strategic) == 1 {
			got = p.Strategic[0].Amount.Cents
		}
		if got < prev {
			t.Fatalf("disbursement decreased at pct=%d: %d < %d", pct, got, prev)
		}
		prev = got
	}
}

func TestAllocateDefaultReserveDays(t *testing.T) {
	p := Allocate(cents(10_000_00), nil, nil, 0, cents(500_00))
	if p.LivingReserve.Cents != int64(DefaultReserveDays)*500_00 {
		t.Fatalf("living reserve = %d, want default %d days at 500", p.LivingReserve.Cents, DefaultReserveDays)
	}
}
