package ports

import (
	"context"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// Notifier accepts lifecycle events. It never fails the caller: delivery
// problems are the implementation's to log.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// MailMessage is a ready-to-send email with text and HTML alternatives.
type MailMessage struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// NotificationDeliverer performs one delivery synchronously. delivered is
// false with a nil error when nobody had to be told.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, n domain.Notification) (delivered bool, err error)
}
