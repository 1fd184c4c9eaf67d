package email

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/metrics"
)

// SendAsync delivers msg in the background. The send outlives the request
// context but is bounded by its own timeout. done, when non-nil, receives the
// send result.
func SendAsync(ctx context.Context, sender EmailSender, recipient, kind string, msg Message, done chan<- error) {
	recipient = strings.TrimSpace(recipient)
	if sender == nil || recipient == "" || msg.Subject == "" || msg.Body == "" {
		if done != nil {
			done <- nil
		}
		return
	}

	go func() {
		sendCtx, cancel := newEmailContext(ctx, sendTimeout)
		defer cancel()
		err := Deliver(sendCtx, sender, recipient, kind, msg)
		if done != nil {
			done <- err
		}
	}()
}

// Deliver sends msg synchronously and records the outcome.
func Deliver(ctx context.Context, sender EmailSender, recipient, kind string, msg Message) error {
	logger := log.Ctx(ctx)
	if err := sender.Send(ctx, recipient, msg.Subject, msg.Body); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "error").Inc()
		logger.Error().Err(err).Str("kind", kind).Msg("Failed to send email")
		return err
	}
	metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	logger.Debug().Str("kind", kind).Msg("Email sent")
	return nil
}
