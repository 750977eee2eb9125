// Package jobs runs scheduled background work on asynq.
package jobs

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"

	TaskBillsResetMonthly = "bills:reset_monthly"
)

// NewBillResetTask builds the task that reactivates every bill for a new cycle.
// Unique for an hour so a scheduler restart cannot run the reset twice.
func NewBillResetTask() *asynq.Task {
	return asynq.NewTask(TaskBillsResetMonthly, nil,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Unique(time.Hour),
	)
}
