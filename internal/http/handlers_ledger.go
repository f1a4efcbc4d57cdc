package http

import (
	"log/slog"
	"net/http"

	"futureflow/internal/core"
)

type routePayload struct {
	Kind   string `json:"kind"`
	CardID string `json:"card_id,omitempty"`
}

func routeFromPayload(p routePayload) core.PaymentRoute {
	if core.RouteKind(p.Kind) == core.RouteCard {
		return core.CardRoute(p.CardID)
	}
	return core.CashRoute()
}

func routeToPayload(route core.PaymentRoute) routePayload {
	return routePayload{Kind: string(route.Kind), CardID: route.CardID}
}

type transactionPayload struct {
	ID          string       `json:"id,omitempty"`
	Date        string       `json:"date"`
	AmountCents int64        `json:"amount_cents"`
	Kind        string       `json:"kind"`
	Category    string       `json:"category,omitempty"`
	Note        string       `json:"note,omitempty"`
	Route       routePayload `json:"route"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction listing failed", "error", err)
		writeDomainError(w, err)
		return
	}

	payload := make([]transactionPayload, len(transactions))
	for i, tx := range transactions {
		payload[i] = transactionPayload{
			ID:          tx.ID,
			Date:        tx.Date.Format("2006-01-02"),
			AmountCents: tx.Amount.Cents,
			Kind:        string(tx.Kind),
			Category:    tx.Category,
			Note:        tx.Note,
			Route:       routeToPayload(tx.Route),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": payload})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	tx := core.Transaction{
		Date:     date,
		Amount:   core.Money{Cents: req.AmountCents},
		Kind:     core.FlowKind(req.Kind),
		Category: sanitizeInput(req.Category),
		Note:     sanitizeInput(req.Note),
		Route:    routeFromPayload(req.Route),
	}
	if err := tx.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err = s.store.CreateTransaction(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err)
		writeDomainError(w, err)
		return
	}

	s.forecasts.InvalidateCache(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{"id": tx.ID})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.forecasts.InvalidateCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type cardPayload struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	ClosingDay int    `json:"closing_day"`
	PaymentDay int    `json:"payment_day"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.ListCards(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Card listing failed", "error", err)
		writeDomainError(w, err)
		return
	}

	payload := make([]cardPayload, len(cards))
	for i, card := range cards {
		payload[i] = cardPayload{ID: card.ID, Name: card.Name, ClosingDay: card.ClosingDay, PaymentDay: card.PaymentDay}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": payload})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card := core.CardConfig{
		Name:       sanitizeInput(req.Name),
		ClosingDay: req.ClosingDay,
		PaymentDay: req.PaymentDay,
	}
	if err := card.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	card, err := s.store.CreateCard(r.Context(), card)
	if err != nil {
		slog.ErrorContext(r.Context(), "Card create failed", "error", err)
		writeDomainError(w, err)
		return
	}

	s.forecasts.InvalidateCache(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{"id": card.ID})
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCard(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.forecasts.InvalidateCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type recurringPayload struct {
	ID          string       `json:"id,omitempty"`
	Description string       `json:"description"`
	AmountCents int64        `json:"amount_cents"`
	Kind        string       `json:"kind"`
	DayOfMonth  int          `json:"day_of_month"`
	Route       routePayload `json:"route"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListRecurringItems(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Recurring listing failed", "error", err)
		writeDomainError(w, err)
		return
	}

	payload := make([]recurringPayload, len(items))
	for i, item := range items {
		payload[i] = recurringPayload{
			ID:          item.ID,
			Description: item.Description,
			AmountCents: item.Amount.Cents,
			Kind:        string(item.Kind),
			DayOfMonth:  item.DayOfMonth,
			Route:       routeToPayload(item.Route),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recurring": payload})
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item := core.RecurringItem{
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: req.AmountCents},
		Kind:        core.FlowKind(req.Kind),
		DayOfMonth:  req.DayOfMonth,
		Route:       routeFromPayload(req.Route),
	}
	if err := item.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	item, err := s.store.CreateRecurringItem(r.Context(), item)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recurring create failed", "error", err)
		writeDomainError(w, err)
		return
	}

	s.forecasts.InvalidateCache(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{"id": item.ID})
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRecurringItem(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.forecasts.InvalidateCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type debtPayload struct {
	ID                   string `json:"id,omitempty"`
	CardName             string `json:"card_name"`
	MonthlyAmountCents   int64  `json:"monthly_amount_cents"`
	PaymentDay           int    `json:"payment_day"`
	IsPaidThisMonth      bool   `json:"is_paid_this_month"`
	RemainingAmountCents int64  `json:"remaining_amount_cents"`
	TotalPeriods         int    `json:"total_periods"`
	CurrentPeriod        int    `json:"current_period"`
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.store.ListDebts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt listing failed", "error", err)
		writeDomainError(w, err)
		return
	}

	payload := make([]debtPayload, len(debts))
	for i, debt := range debts {
		payload[i] = debtToPayload(debt)
	}
	writeJSON(w, http.StatusOK, map[string]any{"debts": payload})
}

func debtToPayload(debt core.InstallmentDebt) debtPayload {
	return debtPayload{
		ID:                   debt.ID,
		CardName:             debt.CardName,
		MonthlyAmountCents:   debt.MonthlyAmount.Cents,
		PaymentDay:           debt.PaymentDay,
		IsPaidThisMonth:      debt.IsPaidThisMonth,
		RemainingAmountCents: debt.RemainingAmount.Cents,
		TotalPeriods:         debt.TotalPeriods,
		CurrentPeriod:        debt.CurrentPeriod,
	}
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	debt := core.InstallmentDebt{
		CardName:        sanitizeInput(req.CardName),
		MonthlyAmount:   core.Money{Cents: req.MonthlyAmountCents},
		PaymentDay:      req.PaymentDay,
		RemainingAmount: core.Money{Cents: req.RemainingAmountCents},
		TotalPeriods:    req.TotalPeriods,
		CurrentPeriod:   req.CurrentPeriod,
	}
	if err := debt.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	debt, err := s.store.CreateDebt(r.Context(), debt)
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt create failed", "error", err)
		writeDomainError(w, err)
		return
	}

	s.forecasts.InvalidateCache(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{"id": debt.ID})
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDebt(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.forecasts.InvalidateCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	debt, err := s.cycles.PayInstallment(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Installment payment failed", "debt_id", r.PathValue("id"), "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"debt": debtToPayload(debt)})
}

type goalPayload struct {
	ID                   string `json:"id,omitempty"`
	Name                 string `json:"name"`
	TargetAmountCents    int64  `json:"target_amount_cents"`
	CurrentAmountCents   int64  `json:"current_amount_cents"`
	AllocationPercentage int    `json:"allocation_percentage"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.store.ListGoals(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal listing failed", "error", err)
		writeDomainError(w, err)
		return
	}

	payload := make([]goalPayload, len(goals))
	for i, goal := range goals {
		payload[i] = goalPayload{
			ID:                   goal.ID,
			Name:                 goal.Name,
			TargetAmountCents:    goal.TargetAmount.Cents,
			CurrentAmountCents:   goal.CurrentAmount.Cents,
			AllocationPercentage: goal.AllocationPercentage,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": payload})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal := core.SavingsGoal{
		Name:                 sanitizeInput(req.Name),
		TargetAmount:         core.Money{Cents: req.TargetAmountCents},
		CurrentAmount:        core.Money{Cents: req.CurrentAmountCents},
		AllocationPercentage: req.AllocationPercentage,
	}
	if err := goal.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	goal, err := s.store.CreateGoal(r.Context(), goal)
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal create failed", "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": goal.ID})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
