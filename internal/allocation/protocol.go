package allocation

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"futureflow/internal/core"
)

type State string

const (
	StateProposed  State = "proposed"
	StateConfirmed State = "confirmed"
	StateDiscarded State = "discarded"
)

var (
	ErrSessionFinalized = errors.New("allocation session already finalized")
	ErrUnknownGoalLine  = errors.New("no strategic line for goal")
	ErrNegativeAmount   = errors.New("edited amount cannot be negative")
)

// Session is the short-lived confirmation state machine around one
// proposal. While Proposed, the living reserve and the strategic lines
// are editable and free cash is recomputed on every edit; survival
// lines are already obligated and never editable. Confirmed and
// Discarded are terminal, which is what rules out a double commit of
// the same proposal instance. The mutex keeps the single-writer
// discipline over goal balances.
type Session struct {
	mu       sync.Mutex
	id       string
	state    State
	proposal Proposal
}

// NewSession opens a confirmation session in the Proposed state.
func NewSession(p Proposal) *Session {
	return &Session{
		id:       uuid.NewString(),
		state:    StateProposed,
		proposal: p,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Proposal returns a snapshot of the current proposal, including any
// edits applied so far. The copy shares nothing with session state.
func (s *Session) Proposal() Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProposal(s.proposal)
}

// SetLivingReserve edits the living-reserve tier. Free cash absorbs
// the difference and may go negative if the user over-allocates.
func (s *Session) SetLivingReserve(amount core.Money) error {
	if amount.Cents < 0 {
		return ErrNegativeAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProposed {
		return ErrSessionFinalized
	}
	s.proposal.LivingReserve = amount
	s.recomputeFreeCash()
	return nil
}

// SetStrategicAmount edits one strategic line, matched by goal name.
func (s *Session) SetStrategicAmount(goalName string, amount core.Money) error {
	if amount.Cents < 0 {
		return ErrNegativeAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProposed {
		return ErrSessionFinalized
	}
	for i := range s.proposal.Strategic {
		if s.proposal.Strategic[i].GoalName == goalName {
			s.proposal.Strategic[i].Amount = amount
			s.recomputeFreeCash()
			return nil
		}
	}
	return ErrUnknownGoalLine
}

// Confirm finalizes the session and applies the strategic lines to the
// matching goals, returning updated copies. The input slice is not
// mutated; persistence is the caller's concern.
func (s *Session) Confirm(goals []core.SavingsGoal) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProposed {
		return nil, ErrSessionFinalized
	}
	s.state = StateConfirmed
	return Commit(s.proposal, goals), nil
}

// Discard finalizes the session with no side effects.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProposed {
		return ErrSessionFinalized
	}
	s.state = StateDiscarded
	return nil
}

// recomputeFreeCash maintains the conservation invariant after an
// edit. Caller holds the lock.
func (s *Session) recomputeFreeCash() {
	p := &s.proposal
	p.FreeCash = core.Money{
		Cents: p.IncomeAmount.Cents - p.SurvivalTotal().Cents - p.LivingReserve.Cents - p.StrategicTotal().Cents,
	}
}

// Commit adds each strategic line to the goal with the matching name
// and returns updated copies. Goals without a line pass through
// unchanged. Pure; the caller persists the result.
func Commit(p Proposal, goals []core.SavingsGoal) []core.SavingsGoal {
	lines := make(map[string]int64, len(p.Strategic))
	for _, line := range p.Strategic {
		lines[line.GoalName] += line.Amount.Cents
	}

	updated := make([]core.SavingsGoal, len(goals))
	for i, goal := range goals {
		if amount, ok := lines[goal.Name]; ok {
			goal.CurrentAmount = goal.CurrentAmount.Add(core.Money{Cents: amount})
		}
		updated[i] = goal
	}
	return updated
}

func cloneProposal(p Proposal) Proposal {
	out := p
	out.Survival = append([]DebtLine(nil), p.Survival...)
	out.Strategic = append([]GoalLine(nil), p.Strategic...)
	return out
}
