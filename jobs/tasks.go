package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskMailVerification delivers account verification emails.
	TaskMailVerification = "mail:verification"
	// TaskMailWelcome delivers post-verification welcome emails.
	TaskMailWelcome = "mail:welcome"
	// TaskMailPasswordReset delivers password recovery emails.
	TaskMailPasswordReset = "mail:reset"
	// TaskSecurityLogTrim prunes aged security log rows.
	TaskSecurityLogTrim = "seclog:trim"
)

// MailPayload describes a transactional email bound to one recipient.
type MailPayload struct {
	To    string `json:"to"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// NewMailTask constructs an Asynq task of the given mail type.
func NewMailTask(taskType string, payload MailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

// NewSecurityLogTrimTask constructs the retention trim task.
func NewSecurityLogTrimTask() *asynq.Task {
	return asynq.NewTask(TaskSecurityLogTrim, nil)
}
