package worker

import (
	"context"
	"fmt"
	"log/slog"

	"futureflow/internal/amqp"
	"futureflow/internal/core"
)

// GoalWriter persists goal balances.
type GoalWriter interface {
	UpdateGoalAmounts(ctx context.Context, goals []core.SavingsGoal) error
}

// CommitWorker applies confirmed allocations delivered over AMQP.
// Messages carry absolute balances, so a redelivery after a crash
// converges on the same state.
type CommitWorker struct {
	store GoalWriter
}

func NewCommitWorker(store GoalWriter) *CommitWorker {
	return &CommitWorker{store: store}
}

// HandleCommitMessage applies one confirmed allocation's goal
// balances.
func (w *CommitWorker) HandleCommitMessage(ctx context.Context, msg *amqp.AllocationCommittedMessage) error {
	slog.InfoContext(ctx, "Processing allocation commit",
		"allocation_id", msg.AllocationID,
		"income_event_id", msg.IncomeEventID,
		"goals", len(msg.Goals))

	if len(msg.Goals) == 0 {
		slog.WarnContext(ctx, "Allocation commit carried no goal lines",
			"allocation_id", msg.AllocationID)
		return nil
	}

	goals := make([]core.SavingsGoal, 0, len(msg.Goals))
	for _, contribution := range msg.Goals {
		goals = append(goals, core.SavingsGoal{
			Name:          contribution.GoalName,
			CurrentAmount: core.Money{Cents: contribution.NewBalanceCents},
		})
	}

	if err := w.store.UpdateGoalAmounts(ctx, goals); err != nil {
		return fmt.Errorf("apply goal balances: %w", err)
	}

	slog.InfoContext(ctx, "Allocation commit applied",
		"allocation_id", msg.AllocationID,
		"goals", len(goals))

	return nil
}
