package forecast

import (
	"testing"

	"futureflow/internal/core"
)

var testNow = core.NewDate(2025, 3, 3) // a Monday

func cents(n int64) core.Money { return core.Money{Cents: n} }

func TestBuildCalendarOneOffCardRouted(t *testing.T) {
	snap := Snapshot{
		Cards: []core.CardConfig{{ID: "c1", Name: "Everyday", ClosingDay: 10, PaymentDay: 25}},
		Transactions: []core.Transaction{
			{
				ID: "t1", Date: core.NewDate(2025, 3, 5), Amount: cents(1200_00),
				Kind: core.Expense, Category: "Shopping", Route: core.CardRoute("c1"),
			},
			{
				// Cash expenses are settled, never projected.
				ID: "t2", Date: core.NewDate(2025, 3, 5), Amount: cents(500_00),
				Kind: core.Expense, Category: "Groceries", Route: core.CashRoute(),
			},
			{
				// Income never contributes to the outflow calendar.
				ID: "t3", Date: core.NewDate(2025, 3, 5), Amount: cents(9000_00),
				Kind: core.Income, Category: "Salary", Route: core.CashRoute(),
			},
		},
	}

	cal := BuildCalendar(snap, testNow, DefaultHorizonDays)

	due := core.NewDate(2025, 3, 25)
	if got := cal[due]; got.Cents != 1200_00 {
		t.Fatalf("calendar[%v] = %d, want 120000", due.Format("2006-01-02"), got.Cents)
	}
	if len(cal) != 1 {
		t.Fatalf("calendar has %d entries, want 1: %v", len(cal), cal)
	}
}

func TestBuildCalendarOutstandingBalance(t *testing.T) {
	// Two settled-period card transactions aggregate onto one statement.
	snap := Snapshot{
		Cards: []core.CardConfig{{ID: "c1", Name: "Everyday", ClosingDay: 10, PaymentDay: 25}},
		Transactions: []core.Transaction{
			{ID: "t1", Date: core.NewDate(2025, 2, 20), Amount: cents(800_00),
				Kind: core.Expense, Category: "Tech", Route: core.CardRoute("c1")},
			{ID: "t2", Date: core.NewDate(2025, 3, 1), Amount: cents(200_00),
				Kind: core.Expense, Category: "Fuel", Route: core.CardRoute("c1")},
		},
	}

	obs := BuildObligations(snap, testNow, DefaultHorizonDays)
	if len(obs) != 1 {
		t.Fatalf("got %d obligations, want 1: %+v", len(obs), obs)
	}
	ob := obs[0]
	if ob.Origin != OriginCardStatement {
		t.Fatalf("origin = %s, want %s", ob.Origin, OriginCardStatement)
	}
	if ob.Amount.Cents != 1000_00 {
		t.Fatalf("statement amount = %d, want 100000", ob.Amount.Cents)
	}
	// now=Mar 3, closing 10: statement resolves to Mar 25.
	if want := core.NewDate(2025, 3, 25); !ob.Date.Equal(want.Time) {
		t.Fatalf("statement date = %v, want %v", ob.Date, want)
	}
}

func TestBuildCalendarRecurring(t *testing.T) {
	snap := Snapshot{
		Recurring: []core.RecurringItem{
			{ID: "r1", Description: "Rent", Amount: cents(15000_00),
				Kind: core.Expense, DayOfMonth: 1, Route: core.CashRoute()},
			{ID: "r2", Description: "Salary", Amount: cents(50000_00),
				Kind: core.Income, DayOfMonth: 5, Route: core.CashRoute()},
		},
	}

	cal := BuildCalendar(snap, testNow, DefaultHorizonDays)

	// Horizon from Mar 3 over 60 days covers Apr 1 and May 1.
	for _, d := range []core.Date{core.NewDate(2025, 4, 1), core.NewDate(2025, 5, 1)} {
		if got := cal[d]; got.Cents != 15000_00 {
			t.Errorf("calendar[%v] = %d, want 1500000", d.Format("2006-01-02"), got.Cents)
		}
	}
	// Income-kind recurring items stay off the outflow calendar.
	if got, ok := cal[core.NewDate(2025, 4, 5)]; ok {
		t.Errorf("income recurring leaked into calendar: %d", got.Cents)
	}
}

func TestBuildCalendarRecurringLastDayClamp(t *testing.T) {
	snap := Snapshot{
		Recurring: []core.RecurringItem{
			{ID: "r1", Description: "Hosting", Amount: cents(30_00),
				Kind: core.Expense, DayOfMonth: 31, Route: core.CashRoute()},
		},
	}

	now := core.NewDate(2025, 2, 1)
	cal := BuildCalendar(snap, now, 40)

	// February has 28 days; the item fires on the 28th, not never and
	// not on March 3 via overflow.
	if got := cal[core.NewDate(2025, 2, 28)]; got.Cents != 30_00 {
		t.Fatalf("expected clamped fire on Feb 28, calendar = %v", cal)
	}
	if _, ok := cal[core.NewDate(2025, 3, 3)]; ok {
		t.Fatalf("day-of-month overflow wrapped into March")
	}
	// March is long enough, so the 31st fires normally.
	if got := cal[core.NewDate(2025, 3, 31)]; got.Cents != 30_00 {
		t.Fatalf("expected fire on Mar 31, calendar = %v", cal)
	}
}

func TestBuildCalendarRecurringCardRouted(t *testing.T) {
	snap := Snapshot{
		Cards: []core.CardConfig{{ID: "c1", Name: "Everyday", ClosingDay: 10, PaymentDay: 25}},
		Recurring: []core.RecurringItem{
			{ID: "r1", Description: "Streaming", Amount: cents(390_00),
				Kind: core.Expense, DayOfMonth: 2, Route: core.CardRoute("c1")},
		},
	}

	cal := BuildCalendar(snap, testNow, 30)

	// Card-routed recurring items fire on the card's payment day, not
	// their own day-of-month.
	if got := cal[core.NewDate(2025, 3, 25)]; got.Cents != 390_00 {
		t.Fatalf("expected fire on payment day, calendar = %v", cal)
	}
	if _, ok := cal[core.NewDate(2025, 4, 2)]; ok {
		t.Fatalf("card-routed recurring fired on its own day-of-month")
	}
}

func TestBuildCalendarInstallments(t *testing.T) {
	snap := Snapshot{
		Debts: []core.InstallmentDebt{
			{ID: "d1", CardName: "Everyday", MonthlyAmount: cents(2500_00),
				PaymentDay: 15, TotalPeriods: 12, CurrentPeriod: 3},
			{ID: "d2", CardName: "Travel", MonthlyAmount: cents(1000_00),
				PaymentDay: 15, TotalPeriods: 6, CurrentPeriod: 2, IsPaidThisMonth: true},
		},
	}

	cal := BuildCalendar(snap, testNow, DefaultHorizonDays)

	// Unpaid debt projects Mar 15 and Apr 15 within the 3-month window
	// (May 15 falls outside the 60-day horizon from Mar 3... it does
	// not: Mar 3 + 60d = May 2, so May 15 is excluded).
	if got := cal[core.NewDate(2025, 3, 15)]; got.Cents != 2500_00 {
		t.Errorf("calendar[Mar 15] = %d, want 250000", got.Cents)
	}
	if got := cal[core.NewDate(2025, 4, 15)]; got.Cents != 2500_00 {
		t.Errorf("calendar[Apr 15] = %d, want 250000", got.Cents)
	}
	if _, ok := cal[core.NewDate(2025, 5, 15)]; ok {
		t.Errorf("installment projected beyond the horizon")
	}
	if len(cal) != 2 {
		t.Errorf("paid debt leaked into calendar: %v", cal)
	}
}

func TestBuildCalendarPastDueDropped(t *testing.T) {
	// now is past the resolved statement date: the obligation is
	// assumed reflected in realized balances and dropped.
	snap := Snapshot{
		Cards: []core.CardConfig{{ID: "c1", Name: "Everyday", ClosingDay: 10, PaymentDay: 25}},
		Debts: []core.InstallmentDebt{
			{ID: "d1", CardName: "Everyday", MonthlyAmount: cents(100_00),
				PaymentDay: 2, TotalPeriods: 12, CurrentPeriod: 1},
		},
	}

	cal := BuildCalendar(snap, testNow, DefaultHorizonDays)

	// Mar 2 is before now (Mar 3); Apr 2 and May 2 remain.
	if _, ok := cal[core.NewDate(2025, 3, 2)]; ok {
		t.Fatalf("past-due installment kept: %v", cal)
	}
	if got := cal[core.NewDate(2025, 4, 2)]; got.Cents != 100_00 {
		t.Fatalf("calendar[Apr 2] = %d, want 10000", got.Cents)
	}
}

func TestBuildCalendarEmptySnapshot(t *testing.T) {
	cal := BuildCalendar(Snapshot{}, testNow, DefaultHorizonDays)
	if len(cal) != 0 {
		t.Fatalf("empty snapshot produced %d entries", len(cal))
	}
}

func TestBuildCalendarSameDateSum(t *testing.T) {
	snap := Snapshot{
		Cards: []core.CardConfig{{ID: "c1", Name: "Everyday", ClosingDay: 10, PaymentDay: 25}},
		Transactions: []core.Transaction{
			{ID: "t1", Date: core.NewDate(2025, 3, 4), Amount: cents(100_00),
				Kind: core.Expense, Category: "A", Route: core.CardRoute("c1")},
			{ID: "t2", Date: core.NewDate(2025, 3, 6), Amount: cents(250_00),
				Kind: core.Expense, Category: "B", Route: core.CardRoute("c1")},
		},
	}

	cal := BuildCalendar(snap, testNow, DefaultHorizonDays)
	if got := cal[core.NewDate(2025, 3, 25)]; got.Cents != 350_00 {
		t.Fatalf("amounts on the same date not summed: %v", cal)
	}
}
