package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"futureflow/internal/allocation"
	"futureflow/internal/amqp"
	"futureflow/internal/core"
	"futureflow/internal/storage"
)

var ErrSessionNotFound = errors.New("allocation session not found")

// AllocationStore is the persistence surface the allocation flow
// needs.
type AllocationStore interface {
	ListDebts(ctx context.Context) ([]core.InstallmentDebt, error)
	ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
	CreateIncomeEvent(ctx context.Context, event core.IncomeEvent) (core.IncomeEvent, error)
	CreateCommittedAllocation(ctx context.Context, rec storage.CommittedAllocation) (storage.CommittedAllocation, error)
	UpdateGoalAmounts(ctx context.Context, goals []core.SavingsGoal) error
}

// AllocationPublisher hands confirmed allocations to the worker.
type AllocationPublisher interface {
	PublishAllocationCommitted(ctx context.Context, msg *amqp.AllocationCommittedMessage) error
}

// AllocationService runs the income waterfall and tracks the
// propose/edit/confirm sessions. Sessions live in memory: an
// unconfirmed proposal is cheap to rebuild, so losing them on restart
// is fine.
type AllocationService struct {
	store     AllocationStore
	publisher AllocationPublisher

	reserveDays   int
	dailyBaseline core.Money

	mu       sync.Mutex
	sessions map[string]*allocationSession
}

type allocationSession struct {
	session       *allocation.Session
	incomeEventID string
}

func NewAllocationService(store AllocationStore, publisher AllocationPublisher, reserveDays int, dailyBaseline core.Money) *AllocationService {
	if reserveDays <= 0 {
		reserveDays = allocation.DefaultReserveDays
	}
	return &AllocationService{
		store:         store,
		publisher:     publisher,
		reserveDays:   reserveDays,
		dailyBaseline: dailyBaseline,
		sessions:      make(map[string]*allocationSession),
	}
}

// Propose records the income event and opens an editable session
// seeded with the waterfall split.
func (s *AllocationService) Propose(ctx context.Context, amount core.Money, receivedOn core.Date) (string, allocation.Proposal, error) {
	event := core.IncomeEvent{Amount: amount, Date: receivedOn}
	if err := event.Validate(); err != nil {
		return "", allocation.Proposal{}, err
	}

	event, err := s.store.CreateIncomeEvent(ctx, event)
	if err != nil {
		return "", allocation.Proposal{}, fmt.Errorf("record income event: %w", err)
	}

	debts, err := s.store.ListDebts(ctx)
	if err != nil {
		return "", allocation.Proposal{}, fmt.Errorf("load debts: %w", err)
	}
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return "", allocation.Proposal{}, fmt.Errorf("load goals: %w", err)
	}

	var debtLines []allocation.DebtLine
	for _, debt := range debts {
		if debt.IsPaidThisMonth {
			continue
		}
		debtLines = append(debtLines, allocation.DebtLine{
			Label:  debt.CardName,
			Amount: debt.MonthlyAmount,
		})
	}

	proposal := allocation.Allocate(amount, debtLines, goals, s.reserveDays, s.dailyBaseline)
	session := allocation.NewSession(proposal)

	s.mu.Lock()
	s.sessions[session.ID()] = &allocationSession{
		session:       session,
		incomeEventID: event.ID,
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "Allocation proposed",
		"session_id", session.ID(),
		"income_event_id", event.ID,
		"income_cents", amount.Cents,
		"survival_cents", proposal.SurvivalTotal().Cents,
		"free_cash_cents", proposal.FreeCash.Cents)

	return session.ID(), proposal, nil
}

// Get returns the current proposal and state for a session.
func (s *AllocationService) Get(sessionID string) (allocation.Proposal, allocation.State, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return allocation.Proposal{}, "", err
	}
	return entry.session.Proposal(), entry.session.State(), nil
}

// SetLivingReserve overrides the living reserve on an open session.
func (s *AllocationService) SetLivingReserve(sessionID string, amount core.Money) (allocation.Proposal, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return allocation.Proposal{}, err
	}
	if err := entry.session.SetLivingReserve(amount); err != nil {
		return allocation.Proposal{}, err
	}
	return entry.session.Proposal(), nil
}

// SetStrategicAmount overrides one goal line on an open session.
func (s *AllocationService) SetStrategicAmount(sessionID, goalName string, amount core.Money) (allocation.Proposal, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return allocation.Proposal{}, err
	}
	if err := entry.session.SetStrategicAmount(goalName, amount); err != nil {
		return allocation.Proposal{}, err
	}
	return entry.session.Proposal(), nil
}

// Confirm finalizes a session: the audit row is written, and goal
// balances go out through the broker. When no broker is wired the
// balances apply synchronously instead.
func (s *AllocationService) Confirm(ctx context.Context, sessionID string) (allocation.Proposal, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return allocation.Proposal{}, err
	}

	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return allocation.Proposal{}, fmt.Errorf("load goals: %w", err)
	}

	updated, err := entry.session.Confirm(goals)
	if err != nil {
		return allocation.Proposal{}, err
	}
	proposal := entry.session.Proposal()

	rec := storage.CommittedAllocation{
		IncomeEventID: entry.incomeEventID,
		IncomeAmount:  proposal.IncomeAmount,
		Survival:      proposal.SurvivalTotal(),
		LivingReserve: proposal.LivingReserve,
		Strategic:     proposal.StrategicTotal(),
		FreeCash:      proposal.FreeCash,
	}
	rec, err = s.store.CreateCommittedAllocation(ctx, rec)
	if err != nil {
		return allocation.Proposal{}, fmt.Errorf("record committed allocation: %w", err)
	}

	if err := s.dispatchGoalUpdates(ctx, rec.ID, entry.incomeEventID, goals, updated); err != nil {
		return allocation.Proposal{}, err
	}

	slog.InfoContext(ctx, "Allocation confirmed",
		"session_id", sessionID,
		"allocation_id", rec.ID,
		"income_event_id", entry.incomeEventID,
		"strategic_cents", proposal.StrategicTotal().Cents)

	return proposal, nil
}

// Discard abandons a session without touching the ledger.
func (s *AllocationService) Discard(ctx context.Context, sessionID string) error {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	if err := entry.session.Discard(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Allocation discarded", "session_id", sessionID)
	return nil
}

func (s *AllocationService) dispatchGoalUpdates(ctx context.Context, allocationID, incomeEventID string, before, after []core.SavingsGoal) error {
	previous := make(map[string]core.Money, len(before))
	for _, goal := range before {
		previous[goal.Name] = goal.CurrentAmount
	}

	var contributions []amqp.GoalContribution
	for _, goal := range after {
		delta := goal.CurrentAmount.Cents - previous[goal.Name].Cents
		if delta == 0 {
			continue
		}
		contributions = append(contributions, amqp.GoalContribution{
			GoalName:        goal.Name,
			AmountCents:     delta,
			NewBalanceCents: goal.CurrentAmount.Cents,
		})
	}
	if len(contributions) == 0 {
		return nil
	}

	if s.publisher != nil {
		msg := amqp.NewAllocationCommittedMessage(allocationID, incomeEventID, contributions)
		if err := s.publisher.PublishAllocationCommitted(ctx, msg); err == nil {
			return nil
		} else {
			slog.ErrorContext(ctx, "Failed to publish allocation, applying goals directly",
				"allocation_id", allocationID, "error", err)
		}
	}

	if err := s.store.UpdateGoalAmounts(ctx, after); err != nil {
		return fmt.Errorf("apply goal balances: %w", err)
	}
	return nil
}

func (s *AllocationService) lookup(sessionID string) (*allocationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}
