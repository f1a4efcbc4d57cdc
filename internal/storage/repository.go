package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"futureflow/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

var (
	ErrNotFound    = errors.New("record not found")
	ErrAlreadyPaid = errors.New("installment already paid this month")
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func encodeDate(d core.Date) string {
	return d.Format(dateLayout)
}

func decodeDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.DateOf(t), nil
}

func encodeRoute(route core.PaymentRoute) (string, sql.NullString) {
	cardID := sql.NullString{String: route.CardID, Valid: route.CardID != ""}
	return string(route.Kind), cardID
}

func decodeRoute(kind string, cardID sql.NullString) core.PaymentRoute {
	if core.RouteKind(kind) == core.RouteCard {
		return core.CardRoute(cardID.String)
	}
	return core.CashRoute()
}

// CreateTransaction stores a ledger transaction, assigning an ID when
// the caller left it empty.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	routeKind, routeCard := encodeRoute(tx.Route)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, tx_date, amount_cents, kind, category, note, route_kind, route_card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, encodeDate(tx.Date), tx.Amount.Cents, string(tx.Kind), tx.Category, tx.Note, routeKind, routeCard)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"amount_cents", tx.Amount.Cents,
		"kind", tx.Kind,
		"route", tx.Route.Kind)

	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tx_date, amount_cents, kind, category, note, route_kind, route_card_id
		FROM transactions
		ORDER BY tx_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx        core.Transaction
			txDate    string
			kind      string
			routeKind string
			routeCard sql.NullString
		)
		if err := rows.Scan(&tx.ID, &txDate, &tx.Amount.Cents, &kind, &tx.Category, &tx.Note, &routeKind, &routeCard); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date, err = decodeDate(txDate)
		if err != nil {
			return nil, err
		}
		tx.Kind = core.FlowKind(kind)
		tx.Route = decodeRoute(routeKind, routeCard)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "transactions", id)
}

func (r *SQLiteRepository) CreateCard(ctx context.Context, card core.CardConfig) (core.CardConfig, error) {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (id, name, closing_day, payment_day)
		VALUES (?, ?, ?, ?)`,
		card.ID, card.Name, card.ClosingDay, card.PaymentDay)
	if err != nil {
		return core.CardConfig{}, fmt.Errorf("create card: %w", err)
	}

	slog.InfoContext(ctx, "Card saved",
		"id", card.ID,
		"name", card.Name,
		"closing_day", card.ClosingDay,
		"payment_day", card.PaymentDay)

	return card, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.CardConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, closing_day, payment_day
		FROM cards
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.CardConfig
	for rows.Next() {
		var card core.CardConfig
		if err := rows.Scan(&card.ID, &card.Name, &card.ClosingDay, &card.PaymentDay); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, card)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "cards", id)
}

func (r *SQLiteRepository) CreateRecurringItem(ctx context.Context, item core.RecurringItem) (core.RecurringItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	routeKind, routeCard := encodeRoute(item.Route)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_items (id, description, amount_cents, kind, day_of_month, route_kind, route_card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Description, item.Amount.Cents, string(item.Kind), item.DayOfMonth, routeKind, routeCard)
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("create recurring item: %w", err)
	}

	slog.InfoContext(ctx, "Recurring item saved",
		"id", item.ID,
		"description", item.Description,
		"day_of_month", item.DayOfMonth)

	return item, nil
}

func (r *SQLiteRepository) ListRecurringItems(ctx context.Context) ([]core.RecurringItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, kind, day_of_month, route_kind, route_card_id
		FROM recurring_items
		ORDER BY day_of_month, description`)
	if err != nil {
		return nil, fmt.Errorf("list recurring items: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringItem
	for rows.Next() {
		var (
			item      core.RecurringItem
			kind      string
			routeKind string
			routeCard sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Description, &item.Amount.Cents, &kind, &item.DayOfMonth, &routeKind, &routeCard); err != nil {
			return nil, fmt.Errorf("scan recurring item: %w", err)
		}
		item.Kind = core.FlowKind(kind)
		item.Route = decodeRoute(routeKind, routeCard)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteRecurringItem(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "recurring_items", id)
}

func (r *SQLiteRepository) CreateDebt(ctx context.Context, debt core.InstallmentDebt) (core.InstallmentDebt, error) {
	if debt.ID == "" {
		debt.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO installment_debts
			(id, card_name, monthly_amount_cents, payment_day, is_paid_this_month, remaining_amount_cents, total_periods, current_period)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		debt.ID, debt.CardName, debt.MonthlyAmount.Cents, debt.PaymentDay,
		boolToInt(debt.IsPaidThisMonth), debt.RemainingAmount.Cents, debt.TotalPeriods, debt.CurrentPeriod)
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("create installment debt: %w", err)
	}

	slog.InfoContext(ctx, "Installment debt saved",
		"id", debt.ID,
		"card_name", debt.CardName,
		"monthly_amount_cents", debt.MonthlyAmount.Cents,
		"payment_day", debt.PaymentDay)

	return debt, nil
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, id string) (core.InstallmentDebt, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, card_name, monthly_amount_cents, payment_day, is_paid_this_month,
		       remaining_amount_cents, total_periods, current_period
		FROM installment_debts
		WHERE id = ?`, id)

	debt, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.InstallmentDebt{}, ErrNotFound
	}
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("get installment debt: %w", err)
	}
	return debt, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.InstallmentDebt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, card_name, monthly_amount_cents, payment_day, is_paid_this_month,
		       remaining_amount_cents, total_periods, current_period
		FROM installment_debts
		ORDER BY payment_day, card_name`)
	if err != nil {
		return nil, fmt.Errorf("list installment debts: %w", err)
	}
	defer rows.Close()

	var out []core.InstallmentDebt
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment debt: %w", err)
		}
		out = append(out, debt)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "installment_debts", id)
}

// PayInstallment records one installment payment: the debt advances a
// period, its remaining balance shrinks, and a matching cash expense
// lands in the transaction ledger. Both writes share one db
// transaction so a crash cannot leave the debt paid without the ledger
// entry.
func (r *SQLiteRepository) PayInstallment(ctx context.Context, debtID string, paidOn core.Date) (core.InstallmentDebt, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("begin pay installment: %w", err)
	}
	defer dbTx.Rollback()

	row := dbTx.QueryRowContext(ctx, `
		SELECT id, card_name, monthly_amount_cents, payment_day, is_paid_this_month,
		       remaining_amount_cents, total_periods, current_period
		FROM installment_debts
		WHERE id = ?`, debtID)

	debt, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.InstallmentDebt{}, ErrNotFound
	}
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("load installment debt: %w", err)
	}
	if debt.IsPaidThisMonth {
		return core.InstallmentDebt{}, ErrAlreadyPaid
	}

	debt.IsPaidThisMonth = true
	debt.CurrentPeriod++
	debt.RemainingAmount.Cents -= debt.MonthlyAmount.Cents
	if debt.RemainingAmount.Cents < 0 {
		debt.RemainingAmount.Cents = 0
	}

	_, err = dbTx.ExecContext(ctx, `
		UPDATE installment_debts
		SET is_paid_this_month = 1, current_period = ?, remaining_amount_cents = ?
		WHERE id = ?`,
		debt.CurrentPeriod, debt.RemainingAmount.Cents, debt.ID)
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("update installment debt: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, tx_date, amount_cents, kind, category, note, route_kind, route_card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		uuid.NewString(), encodeDate(paidOn), debt.MonthlyAmount.Cents,
		string(core.Expense), "Debt payment", debt.CardName, string(core.RouteCash))
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("record installment payment: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("commit pay installment: %w", err)
	}

	slog.InfoContext(ctx, "Installment paid",
		"id", debt.ID,
		"card_name", debt.CardName,
		"period", debt.CurrentPeriod,
		"remaining_cents", debt.RemainingAmount.Cents)

	return debt, nil
}

// ResetInstallmentFlags clears the paid-this-month marker on every
// debt. Ran at the start of each calendar month.
func (r *SQLiteRepository) ResetInstallmentFlags(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE installment_debts SET is_paid_this_month = 0 WHERE is_paid_this_month = 1`)
	if err != nil {
		return 0, fmt.Errorf("reset installment flags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset installment flags: %w", err)
	}

	slog.InfoContext(ctx, "Installment flags reset", "debts", n)
	return n, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, goal core.SavingsGoal) (core.SavingsGoal, error) {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals (id, name, target_amount_cents, current_amount_cents, allocation_percentage)
		VALUES (?, ?, ?, ?, ?)`,
		goal.ID, goal.Name, goal.TargetAmount.Cents, goal.CurrentAmount.Cents, goal.AllocationPercentage)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal saved",
		"id", goal.ID,
		"name", goal.Name,
		"target_cents", goal.TargetAmount.Cents,
		"allocation_pct", goal.AllocationPercentage)

	return goal, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_amount_cents, current_amount_cents, allocation_percentage
		FROM savings_goals
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var goal core.SavingsGoal
		if err := rows.Scan(&goal.ID, &goal.Name, &goal.TargetAmount.Cents, &goal.CurrentAmount.Cents, &goal.AllocationPercentage); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		out = append(out, goal)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "savings_goals", id)
}

// UpdateGoalAmounts persists new balances for the named goals in a
// single db transaction. Amounts are absolute, not deltas, keyed by
// goal name so retried commits stay idempotent.
func (r *SQLiteRepository) UpdateGoalAmounts(ctx context.Context, goals []core.SavingsGoal) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin goal update: %w", err)
	}
	defer dbTx.Rollback()

	for _, goal := range goals {
		res, err := dbTx.ExecContext(ctx, `
			UPDATE savings_goals SET current_amount_cents = ? WHERE name = ?`,
			goal.CurrentAmount.Cents, goal.Name)
		if err != nil {
			return fmt.Errorf("update goal %q: %w", goal.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			slog.WarnContext(ctx, "Goal missing during balance update", "name", goal.Name)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit goal update: %w", err)
	}

	slog.InfoContext(ctx, "Goal balances updated", "goals", len(goals))
	return nil
}

func (r *SQLiteRepository) CreateIncomeEvent(ctx context.Context, event core.IncomeEvent) (core.IncomeEvent, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO income_events (id, amount_cents, received_at)
		VALUES (?, ?, ?)`,
		event.ID, event.Amount.Cents, encodeDate(event.Date))
	if err != nil {
		return core.IncomeEvent{}, fmt.Errorf("create income event: %w", err)
	}

	slog.InfoContext(ctx, "Income event saved",
		"id", event.ID,
		"amount_cents", event.Amount.Cents)

	return event, nil
}

func (r *SQLiteRepository) ListIncomeEvents(ctx context.Context) ([]core.IncomeEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, received_at
		FROM income_events
		ORDER BY received_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list income events: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeEvent
	for rows.Next() {
		var (
			event      core.IncomeEvent
			receivedAt string
		)
		if err := rows.Scan(&event.ID, &event.Amount.Cents, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan income event: %w", err)
		}
		event.Date, err = decodeDate(receivedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// CommittedAllocation is the audit record written when a proposal is
// confirmed.
type CommittedAllocation struct {
	ID            string
	IncomeEventID string
	IncomeAmount  core.Money
	Survival      core.Money
	LivingReserve core.Money
	Strategic     core.Money
	FreeCash      core.Money
	CommittedAt   time.Time
}

func (r *SQLiteRepository) CreateCommittedAllocation(ctx context.Context, rec CommittedAllocation) (CommittedAllocation, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CommittedAt.IsZero() {
		rec.CommittedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO committed_allocations
			(id, income_event_id, income_amount_cents, survival_cents, living_reserve_cents, strategic_cents, free_cash_cents, committed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.IncomeEventID, rec.IncomeAmount.Cents, rec.Survival.Cents,
		rec.LivingReserve.Cents, rec.Strategic.Cents, rec.FreeCash.Cents,
		rec.CommittedAt.Format(time.RFC3339))
	if err != nil {
		return CommittedAllocation{}, fmt.Errorf("create committed allocation: %w", err)
	}

	slog.InfoContext(ctx, "Allocation committed",
		"id", rec.ID,
		"income_event_id", rec.IncomeEventID,
		"income_cents", rec.IncomeAmount.Cents,
		"free_cash_cents", rec.FreeCash.Cents)

	return rec, nil
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (core.InstallmentDebt, error) {
	var (
		debt core.InstallmentDebt
		paid int
	)
	err := row.Scan(&debt.ID, &debt.CardName, &debt.MonthlyAmount.Cents, &debt.PaymentDay,
		&paid, &debt.RemainingAmount.Cents, &debt.TotalPeriods, &debt.CurrentPeriod)
	if err != nil {
		return core.InstallmentDebt{}, err
	}
	debt.IsPaidThisMonth = paid != 0
	return debt, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
