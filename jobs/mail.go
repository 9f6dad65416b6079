package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/quadra-imoveis/quadra/internal/email"
	jobmetrics "github.com/quadra-imoveis/quadra/internal/jobs"
)

// MailJob delivers queued transactional email.
type MailJob struct {
	Sender      email.Sender
	FrontendURL string
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// NewMailJob initialises the mail handler.
func NewMailJob(sender email.Sender, frontendURL string, logger *slog.Logger, metrics *jobmetrics.Metrics) *MailJob {
	return &MailJob{Sender: sender, FrontendURL: frontendURL, Logger: logger, Metrics: metrics}
}

// Handle executes one mail task. The task type selects the template.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Sender == nil {
		return errors.New("mail job: handler not configured")
	}
	var payload MailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(t.Type())
	defer func() {
		err = tracker.End(err)
	}()

	var msg email.Message
	switch t.Type() {
	case TaskMailVerification:
		msg = email.VerificationMessage(payload.Name, j.FrontendURL, payload.Token)
	case TaskMailWelcome:
		msg = email.WelcomeMessage(payload.Name, j.FrontendURL)
	case TaskMailPasswordReset:
		msg = email.PasswordResetMessage(payload.Name, j.FrontendURL, payload.Token)
	default:
		return asynq.SkipRetry
	}

	if err := j.Sender.Send(payload.To, msg.Subject, msg.HTML, msg.Text); err != nil {
		j.Logger.Error("mail task failed",
			slog.String("type", t.Type()),
			slog.String("to", payload.To),
			slog.Any("error", err))
		return err
	}
	return nil
}
