package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"futureflow/internal/core"
)

type fakeCycleStore struct {
	paidID   string
	paidOn   core.Date
	payErr   error
	resetN   int64
	resetErr error
}

func (f *fakeCycleStore) PayInstallment(_ context.Context, debtID string, paidOn core.Date) (core.InstallmentDebt, error) {
	if f.payErr != nil {
		return core.InstallmentDebt{}, f.payErr
	}
	f.paidID = debtID
	f.paidOn = paidOn
	return core.InstallmentDebt{
		ID:              debtID,
		CardName:        "Visa",
		MonthlyAmount:   core.Money{Cents: 150_00},
		PaymentDay:      15,
		IsPaidThisMonth: true,
		CurrentPeriod:   2,
		TotalPeriods:    3,
	}, nil
}

func (f *fakeCycleStore) ResetInstallmentFlags(context.Context) (int64, error) {
	if f.resetErr != nil {
		return 0, f.resetErr
	}
	return f.resetN, nil
}

func fixedClock(year, month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.Month(month), day, 14, 30, 0, 0, time.UTC)
	}
}

func TestPayInstallmentUsesInjectedClock(t *testing.T) {
	store := &fakeCycleStore{}
	svc := NewCycleService(store, nil, fixedClock(2025, 3, 15))

	debt, err := svc.PayInstallment(context.Background(), "d1")
	if err != nil {
		t.Fatalf("PayInstallment() error = %v", err)
	}
	if store.paidID != "d1" {
		t.Errorf("paid debt = %q, want d1", store.paidID)
	}
	if !store.paidOn.Equal(core.NewDate(2025, 3, 15).Time) {
		t.Errorf("paidOn = %v, want 2025-03-15", store.paidOn)
	}
	if !debt.IsPaidThisMonth || debt.CurrentPeriod != 2 {
		t.Errorf("returned debt = %+v, want paid at period 2", debt)
	}
}

func TestPayInstallmentWrapsStoreError(t *testing.T) {
	sentinel := errors.New("installment already paid this month")
	svc := NewCycleService(&fakeCycleStore{payErr: sentinel}, nil, fixedClock(2025, 3, 15))

	if _, err := svc.PayInstallment(context.Background(), "d1"); !errors.Is(err, sentinel) {
		t.Errorf("PayInstallment() error = %v, want wrapped sentinel", err)
	}
}

func TestMonthlyReset(t *testing.T) {
	svc := NewCycleService(&fakeCycleStore{resetN: 3}, nil, fixedClock(2025, 4, 1))

	n, err := svc.MonthlyReset(context.Background())
	if err != nil {
		t.Fatalf("MonthlyReset() error = %v", err)
	}
	if n != 3 {
		t.Errorf("MonthlyReset() = %d, want 3", n)
	}
}
