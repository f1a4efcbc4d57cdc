package services

import (
	"context"
	"fmt"
	"log/slog"

	"futureflow/internal/cache"
	"futureflow/internal/core"
	"futureflow/internal/forecast"
)

// SnapshotSource loads the ledger state the forecast is computed from.
type SnapshotSource interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListRecurringItems(ctx context.Context) ([]core.RecurringItem, error)
	ListDebts(ctx context.Context) ([]core.InstallmentDebt, error)
	ListCards(ctx context.Context) ([]core.CardConfig, error)
}

// ForecastService computes weekly exposure outlooks. Results are pure
// functions of the snapshot and the reference date, so they cache
// safely until the next ledger write.
type ForecastService struct {
	source      SnapshotSource
	cache       cache.ForecastCache
	horizonDays int
	weekCount   int
}

func NewForecastService(source SnapshotSource, fc cache.ForecastCache, horizonDays, weekCount int) *ForecastService {
	if horizonDays <= 0 {
		horizonDays = forecast.DefaultHorizonDays
	}
	if weekCount <= 0 {
		weekCount = forecast.DefaultWeekCount
	}
	return &ForecastService{
		source:      source,
		cache:       fc,
		horizonDays: horizonDays,
		weekCount:   weekCount,
	}
}

// WeeklyOutlook returns the exposure windows starting at refDate.
func (s *ForecastService) WeeklyOutlook(ctx context.Context, refDate core.Date) ([]forecast.WeekExposure, error) {
	key := fmt.Sprintf("%s:%d:%d", refDate.Format("2006-01-02"), s.horizonDays, s.weekCount)

	if s.cache != nil {
		if weeks, ok := s.cache.Get(ctx, key); ok {
			slog.DebugContext(ctx, "Forecast cache hit", "key", key)
			return weeks, nil
		}
	}

	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	cal := forecast.BuildCalendar(snapshot, refDate, s.horizonDays)
	weeks := forecast.AggregateWeeks(cal, refDate, s.weekCount)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, weeks); err != nil {
			slog.WarnContext(ctx, "Failed to cache forecast", "key", key, "error", err)
		}
	}

	slog.InfoContext(ctx, "Forecast computed",
		"ref_date", refDate.Format("2006-01-02"),
		"horizon_days", s.horizonDays,
		"weeks", len(weeks),
		"obligation_dates", len(cal))

	return weeks, nil
}

// Obligations returns the dated entries behind the outlook, for
// drill-down views.
func (s *ForecastService) Obligations(ctx context.Context, refDate core.Date) ([]forecast.Obligation, error) {
	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return forecast.BuildObligations(snapshot, refDate, s.horizonDays), nil
}

// NearTermPressure estimates the cash needed to stay current over the
// next two months: two rounds of recurring expenses plus two
// installments on every open debt.
func (s *ForecastService) NearTermPressure(ctx context.Context) (core.Money, error) {
	recurring, err := s.source.ListRecurringItems(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("load recurring items: %w", err)
	}
	debts, err := s.source.ListDebts(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("load debts: %w", err)
	}

	var total core.Money
	for _, item := range recurring {
		if item.Kind == core.Expense {
			total.Cents += item.Amount.Cents * 2
		}
	}
	for _, debt := range debts {
		if !debt.IsPaidThisMonth {
			total.Cents += debt.MonthlyAmount.Cents * 2
		}
	}
	return total, nil
}

// InvalidateCache drops every cached forecast. Call after any write
// that can move an obligation.
func (s *ForecastService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Purge(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to purge forecast cache", "error", err)
	}
}

func (s *ForecastService) loadSnapshot(ctx context.Context) (forecast.Snapshot, error) {
	transactions, err := s.source.ListTransactions(ctx)
	if err != nil {
		return forecast.Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	recurring, err := s.source.ListRecurringItems(ctx)
	if err != nil {
		return forecast.Snapshot{}, fmt.Errorf("load recurring items: %w", err)
	}
	debts, err := s.source.ListDebts(ctx)
	if err != nil {
		return forecast.Snapshot{}, fmt.Errorf("load debts: %w", err)
	}
	cards, err := s.source.ListCards(ctx)
	if err != nil {
		return forecast.Snapshot{}, fmt.Errorf("load cards: %w", err)
	}

	return forecast.Snapshot{
		Transactions: transactions,
		Recurring:    recurring,
		Debts:        debts,
		Cards:        cards,
	}, nil
}
