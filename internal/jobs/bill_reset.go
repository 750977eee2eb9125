package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

type BillResetter interface {
	ResetMonthly(ctx context.Context) (int64, error)
}

// Tracker records job outcomes. *observability.Metrics satisfies it.
type Tracker interface {
	TrackJob(job string, err error) error
}

type BillResetJob struct {
	bills   BillResetter
	tracker Tracker
	logger  *slog.Logger
}

func NewBillResetJob(bills BillResetter, tracker Tracker, logger *slog.Logger) *BillResetJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &BillResetJob{bills: bills, tracker: tracker, logger: logger}
}

func (j *BillResetJob) Handle(ctx context.Context, _ *asynq.Task) error {
	n, err := j.bills.ResetMonthly(ctx)
	if err != nil {
		err = fmt.Errorf("reset monthly bills: %w", err)
		j.logger.Error("failed to reset bills", "error", err)
	} else {
		j.logger.Info("monthly bill reset done", "bills", n)
	}

	if j.tracker != nil {
		return j.tracker.TrackJob(TaskBillsResetMonthly, err)
	}

	return err
}
