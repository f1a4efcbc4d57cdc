package http

import (
	"log/slog"
	"net/http"
	"time"

	"futureflow/internal/allocation"
	"futureflow/internal/core"
)

type proposalPayload struct {
	IncomeCents        int64             `json:"income_cents"`
	Survival           []debtLinePayload `json:"survival"`
	SurvivalCents      int64             `json:"survival_cents"`
	LivingReserveCents int64             `json:"living_reserve_cents"`
	Strategic          []goalLinePayload `json:"strategic"`
	StrategicCents     int64             `json:"strategic_cents"`
	FreeCashCents      int64             `json:"free_cash_cents"`
}

type debtLinePayload struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

type goalLinePayload struct {
	GoalName    string `json:"goal_name"`
	AmountCents int64  `json:"amount_cents"`
}

func proposalToPayload(p allocation.Proposal) proposalPayload {
	out := proposalPayload{
		IncomeCents:        p.IncomeAmount.Cents,
		SurvivalCents:      p.SurvivalTotal().Cents,
		LivingReserveCents: p.LivingReserve.Cents,
		StrategicCents:     p.StrategicTotal().Cents,
		FreeCashCents:      p.FreeCash.Cents,
		Survival:           []debtLinePayload{},
		Strategic:          []goalLinePayload{},
	}
	for _, line := range p.Survival {
		out.Survival = append(out.Survival, debtLinePayload{Label: line.Label, AmountCents: line.Amount.Cents})
	}
	for _, line := range p.Strategic {
		out.Strategic = append(out.Strategic, goalLinePayload{GoalName: line.GoalName, AmountCents: line.Amount.Cents})
	}
	return out
}

type incomeRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

func (s *Server) handleProposeAllocation(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount := core.Money{Cents: req.AmountCents}
	if req.Amount != "" {
		parsed, err := core.ParseDecimalToCents(sanitizeInput(req.Amount))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		amount = core.Money{Cents: parsed}
	}

	receivedOn := core.DateOf(time.Now())
	if req.Date != "" {
		var err error
		if receivedOn, err = parseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
	}

	sessionID, proposal, err := s.allocations.Propose(r.Context(), amount, receivedOn)
	if err != nil {
		slog.ErrorContext(r.Context(), "Allocation proposal failed", "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sessionID,
		"state":      string(allocation.StateProposed),
		"proposal":   proposalToPayload(proposal),
	})
}

func (s *Server) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	proposal, state, err := s.allocations.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": r.PathValue("id"),
		"state":      string(state),
		"proposal":   proposalToPayload(proposal),
	})
}

type allocationEditRequest struct {
	LivingReserveCents *int64 `json:"living_reserve_cents"`
	GoalName           string `json:"goal_name"`
	AmountCents        *int64 `json:"amount_cents"`
}

func (s *Server) handleEditAllocation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req allocationEditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		proposal allocation.Proposal
		err      error
	)
	switch {
	case req.LivingReserveCents != nil:
		proposal, err = s.allocations.SetLivingReserve(sessionID, core.Money{Cents: *req.LivingReserveCents})
	case req.GoalName != "" && req.AmountCents != nil:
		proposal, err = s.allocations.SetStrategicAmount(sessionID, sanitizeInput(req.GoalName), core.Money{Cents: *req.AmountCents})
	default:
		writeError(w, http.StatusBadRequest, "provide living_reserve_cents, or goal_name with amount_cents")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"proposal":   proposalToPayload(proposal),
	})
}

func (s *Server) handleConfirmAllocation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	proposal, err := s.allocations.Confirm(r.Context(), sessionID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Allocation confirm failed", "session_id", sessionID, "error", err)
		writeDomainError(w, err)
		return
	}

	s.forecasts.InvalidateCache(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"state":      string(allocation.StateConfirmed),
		"proposal":   proposalToPayload(proposal),
	})
}

func (s *Server) handleDiscardAllocation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := s.allocations.Discard(r.Context(), sessionID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"state":      string(allocation.StateDiscarded),
	})
}
