// Package http exposes the forecast and allocation engine as a JSON
// API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"futureflow/internal/core"
	"futureflow/internal/services"
	"futureflow/internal/storage"
)

// Store is the persistence surface the ledger handlers need.
// *storage.SQLiteRepository satisfies it.
type Store interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	CreateCard(ctx context.Context, card core.CardConfig) (core.CardConfig, error)
	ListCards(ctx context.Context) ([]core.CardConfig, error)
	DeleteCard(ctx context.Context, id string) error

	CreateRecurringItem(ctx context.Context, item core.RecurringItem) (core.RecurringItem, error)
	ListRecurringItems(ctx context.Context) ([]core.RecurringItem, error)
	DeleteRecurringItem(ctx context.Context, id string) error

	CreateDebt(ctx context.Context, debt core.InstallmentDebt) (core.InstallmentDebt, error)
	ListDebts(ctx context.Context) ([]core.InstallmentDebt, error)
	DeleteDebt(ctx context.Context, id string) error

	CreateGoal(ctx context.Context, goal core.SavingsGoal) (core.SavingsGoal, error)
	ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
	DeleteGoal(ctx context.Context, id string) error
}

type Server struct {
	http.Server

	store       Store
	forecasts   *services.ForecastService
	allocations *services.AllocationService
	cycles      *services.CycleService

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, store Store, forecasts *services.ForecastService, allocations *services.AllocationService, cycles *services.CycleService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       store,
		forecasts:   forecasts,
		allocations: allocations,
		cycles:      cycles,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/forecast", s.withMiddleware(s.handleForecast))
	mux.HandleFunc("GET /api/forecast/obligations", s.withMiddleware(s.handleObligations))
	mux.HandleFunc("GET /api/forecast/pressure", s.withMiddleware(s.handlePressure))

	mux.HandleFunc("POST /api/income", s.withMiddleware(s.handleProposeAllocation))
	mux.HandleFunc("GET /api/allocations/{id}", s.withMiddleware(s.handleGetAllocation))
	mux.HandleFunc("PATCH /api/allocations/{id}", s.withMiddleware(s.handleEditAllocation))
	mux.HandleFunc("POST /api/allocations/{id}/confirm", s.withMiddleware(s.handleConfirmAllocation))
	mux.HandleFunc("POST /api/allocations/{id}/discard", s.withMiddleware(s.handleDiscardAllocation))

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/cards", s.withMiddleware(s.handleListCards))
	mux.HandleFunc("POST /api/cards", s.withMiddleware(s.handleCreateCard))
	mux.HandleFunc("DELETE /api/cards/{id}", s.withMiddleware(s.handleDeleteCard))

	mux.HandleFunc("GET /api/recurring", s.withMiddleware(s.handleListRecurring))
	mux.HandleFunc("POST /api/recurring", s.withMiddleware(s.handleCreateRecurring))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.withMiddleware(s.handleDeleteRecurring))

	mux.HandleFunc("GET /api/debts", s.withMiddleware(s.handleListDebts))
	mux.HandleFunc("POST /api/debts", s.withMiddleware(s.handleCreateDebt))
	mux.HandleFunc("DELETE /api/debts/{id}", s.withMiddleware(s.handleDeleteDebt))
	mux.HandleFunc("POST /api/debts/{id}/pay", s.withMiddleware(s.handlePayInstallment))

	mux.HandleFunc("GET /api/goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withMiddleware(s.handleCreateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withMiddleware(s.handleDeleteGoal))

	return s
}

// withMiddleware adds security headers, rate limiting, and request
// logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutating requests only.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

var _ Store = (*storage.SQLiteRepository)(nil)
