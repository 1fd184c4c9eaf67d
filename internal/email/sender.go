package email

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// EmailSender provides a testable abstraction over SES delivery.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
	SendFrom(ctx context.Context, recipient, subject, body, sender string) error
}

type Message struct {
	Subject string
	Body    string
}

// LogSender writes messages to the log instead of delivering them. It is used
// when SES credentials are not configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	return LogSender{}.SendFrom(ctx, recipient, subject, body, "")
}

func (LogSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	log.Ctx(ctx).Info().
		Str("recipient", recipient).
		Str("sender", sender).
		Str("subject", subject).
		Int("body_lines", strings.Count(body, "\n")+1).
		Msg("Email delivery disabled; message logged")
	return nil
}
