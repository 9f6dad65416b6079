package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/quadra-imoveis/quadra/internal/jobs"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// SecurityLogTrimJob prunes security log rows past their retention window.
type SecurityLogTrimJob struct {
	Logs      *shared.SecurityLogger
	Retention time.Duration
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewSecurityLogTrimJob initialises the trim handler.
func NewSecurityLogTrimJob(logs *shared.SecurityLogger, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *SecurityLogTrimJob {
	return &SecurityLogTrimJob{Logs: logs, Retention: retention, Logger: logger, Metrics: metrics}
}

// Handle executes the trim.
func (j *SecurityLogTrimJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Logs == nil {
		return errors.New("seclog trim: handler not configured")
	}

	tracker := j.Metrics.Track(TaskSecurityLogTrim)
	defer func() {
		err = tracker.End(err)
	}()

	removed, err := j.Logs.Trim(ctx, j.Retention)
	if err != nil {
		return err
	}
	j.Logger.Info("security log trimmed", slog.Int64("removed", removed))
	return nil
}
