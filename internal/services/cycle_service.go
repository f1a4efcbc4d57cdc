package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"futureflow/internal/core"
)

// CycleStore mutates installment debt state.
type CycleStore interface {
	PayInstallment(ctx context.Context, debtID string, paidOn core.Date) (core.InstallmentDebt, error)
	ResetInstallmentFlags(ctx context.Context) (int64, error)
}

// CycleService advances installment debts through their monthly
// cycle. The clock is injected so payment dates stay deterministic
// under test.
type CycleService struct {
	store    CycleStore
	forecast *ForecastService
	now      func() time.Time
}

func NewCycleService(store CycleStore, forecast *ForecastService, now func() time.Time) *CycleService {
	if now == nil {
		now = time.Now
	}
	return &CycleService{store: store, forecast: forecast, now: now}
}

// PayInstallment settles this month's installment for a debt. The
// ledger entry lands on today's date.
func (s *CycleService) PayInstallment(ctx context.Context, debtID string) (core.InstallmentDebt, error) {
	debt, err := s.store.PayInstallment(ctx, debtID, core.DateOf(s.now()))
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("pay installment: %w", err)
	}

	if s.forecast != nil {
		s.forecast.InvalidateCache(ctx)
	}

	slog.InfoContext(ctx, "Installment settled",
		"debt_id", debt.ID,
		"card_name", debt.CardName,
		"period", fmt.Sprintf("%d/%d", debt.CurrentPeriod, debt.TotalPeriods))

	return debt, nil
}

// MonthlyReset clears every paid-this-month flag. Scheduled for the
// first day of each month.
func (s *CycleService) MonthlyReset(ctx context.Context) (int64, error) {
	n, err := s.store.ResetInstallmentFlags(ctx)
	if err != nil {
		return 0, fmt.Errorf("monthly reset: %w", err)
	}

	if n > 0 && s.forecast != nil {
		s.forecast.InvalidateCache(ctx)
	}

	slog.InfoContext(ctx, "Monthly installment reset completed", "debts", n)
	return n, nil
}
