package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  FlowKind = "income"
	Expense FlowKind = "expense"
)

const (
	RouteCash RouteKind = "cash"
	RouteCard RouteKind = "card"
)

type (
	FlowKind  string
	RouteKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// PaymentRoute is a tagged variant with exactly two cases: a cash
	// route settles immediately from an account, a card route defers
	// settlement to the card's billing cycle. CardID is set only when
	// Kind is RouteCard.
	PaymentRoute struct {
		Kind   RouteKind
		CardID string
	}

	Transaction struct {
		ID       string
		Date     Date
		Amount   Money
		Kind     FlowKind
		Category string
		Note     string
		Route    PaymentRoute
	}

	// CardConfig describes a credit card's billing cycle. No ordering
	// between ClosingDay and PaymentDay is enforced: a payment day
	// numerically below the closing day is valid and rolls the
	// statement an extra month forward.
	CardConfig struct {
		ID         string
		Name       string
		ClosingDay int
		PaymentDay int
	}

	InstallmentDebt struct {
		ID              string
		CardName        string
		MonthlyAmount   Money
		PaymentDay      int
		IsPaidThisMonth bool
		RemainingAmount Money
		TotalPeriods    int
		CurrentPeriod   int
	}

	// RecurringItem fires every month on DayOfMonth, clamped to the
	// last day when the month is shorter.
	RecurringItem struct {
		ID          string
		Description string
		Amount      Money
		Kind        FlowKind
		DayOfMonth  int
		Route       PaymentRoute
	}

	SavingsGoal struct {
		ID                   string
		Name                 string
		TargetAmount         Money
		CurrentAmount        Money
		AllocationPercentage int
	}

	IncomeEvent struct {
		ID     string
		Amount Money
		Date   Date
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day of month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPercentage = errors.New("invalid allocation percentage")
	ErrInvalidKind       = errors.New("invalid flow kind")
	ErrInvalidRoute      = errors.New("invalid payment route")
	ErrEmptyName         = errors.New("empty name")
)

// NewDate creates a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary instant to its UTC calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// AddDays returns the date n days later (negative n goes back).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// DaysIn returns the number of days in the given month. The day-zero
// construction never overflows into the next month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds a date from a year, a possibly out-of-range month
// ordinal, and a day-of-month clamped to the target month's length.
// Month normalization is done by hand so that an oversized day can
// never wrap into the following month.
func ClampedDate(year, month, day int) Date {
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}
	if last := DaysIn(year, time.Month(month)); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(year, month, day)
}

func CashRoute() PaymentRoute {
	return PaymentRoute{Kind: RouteCash}
}

func CardRoute(cardID string) PaymentRoute {
	return PaymentRoute{Kind: RouteCard, CardID: cardID}
}

func (r PaymentRoute) IsCard() bool {
	return r.Kind == RouteCard
}

func (r PaymentRoute) Validate() error {
	switch r.Kind {
	case RouteCash:
		if r.CardID != "" {
			return ErrInvalidRoute
		}
	case RouteCard:
		if r.CardID == "" {
			return ErrInvalidRoute
		}
	default:
		return ErrInvalidRoute
	}
	return nil
}

func (k FlowKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts; the result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) IsPositive() bool {
	return m.Cents > 0
}

func validDayOfMonth(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := t.Route.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return errors.New("empty category")
	}
	return nil
}

func (c CardConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := validDayOfMonth(c.ClosingDay); err != nil {
		return err
	}
	return validDayOfMonth(c.PaymentDay)
}

func (d InstallmentDebt) Validate() error {
	if strings.TrimSpace(d.CardName) == "" {
		return ErrEmptyName
	}
	if err := validDayOfMonth(d.PaymentDay); err != nil {
		return err
	}
	if err := d.MonthlyAmount.Validate(); err != nil {
		return err
	}
	if err := d.RemainingAmount.Validate(); err != nil {
		return err
	}
	if d.TotalPeriods < 1 {
		return errors.New("total periods must be at least 1")
	}
	if d.CurrentPeriod < 0 || d.CurrentPeriod > d.TotalPeriods {
		return errors.New("current period out of range")
	}
	return nil
}

func (r RecurringItem) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("empty description")
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if err := validDayOfMonth(r.DayOfMonth); err != nil {
		return err
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return r.Route.Validate()
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.AllocationPercentage < 0 || g.AllocationPercentage > 100 {
		return ErrInvalidPercentage
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	return g.CurrentAmount.Validate()
}

func (e IncomeEvent) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
