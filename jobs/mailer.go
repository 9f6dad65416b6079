package jobs

import "context"

// QueueMailer satisfies the auth mailer by enqueueing tasks instead of
// talking to SMTP inline, so registration never blocks on mail delivery.
type QueueMailer struct {
	client *Client
}

// NewQueueMailer builds a QueueMailer over the Asynq client.
func NewQueueMailer(client *Client) *QueueMailer {
	return &QueueMailer{client: client}
}

func (m *QueueMailer) SendVerification(ctx context.Context, email, name, token string) error {
	_, err := m.client.EnqueueMail(ctx, TaskMailVerification, MailPayload{To: email, Name: name, Token: token})
	return err
}

func (m *QueueMailer) SendWelcome(ctx context.Context, email, name string) error {
	_, err := m.client.EnqueueMail(ctx, TaskMailWelcome, MailPayload{To: email, Name: name})
	return err
}

func (m *QueueMailer) SendPasswordReset(ctx context.Context, email, name, token string) error {
	_, err := m.client.EnqueueMail(ctx, TaskMailPasswordReset, MailPayload{To: email, Name: name, Token: token})
	return err
}
