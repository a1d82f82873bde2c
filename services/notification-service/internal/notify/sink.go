package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Sink delivers a rendered message.
type Sink interface {
	Deliver(ctx context.Context, m Message) error
}

// LogSink writes each message as a structured log line.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Deliver(_ context.Context, m Message) error {
	s.Log.Info().
		Str("event_id", m.EventID).
		Str("type", m.Type).
		Str("to", m.To).
		Str("subject", m.Subject).
		Str("body", m.Body).
		Msg("notification delivered")
	return nil
}
