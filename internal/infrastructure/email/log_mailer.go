package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/ports"
)

// LogMailer writes messages to the log instead of sending them. It stands in
// for SMTP when no relay is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email not sent, no SMTP relay configured")
	return nil
}
