package eventlog

import (
	"context"
	"log/slog"
)

// SlogAdapter writes mapper events to an slog.Logger.
// Useful for development when you want to see pipeline events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("source", event.Source.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Channel != 0 {
		attrs = append(attrs, slog.Int("channel", event.Channel))
	}

	// Add type-specific attributes
	switch {
	case event.Signal != nil:
		attrs = append(attrs,
			slog.String("protocol", event.Signal.Protocol),
			slog.String("address", event.Signal.Address),
			slog.String("command", event.Signal.Command),
			slog.String("event", event.Signal.Event),
			slog.String("match", event.Signal.Match.String()),
		)
		if event.Signal.Debounced {
			attrs = append(attrs, slog.Bool("debounced", true))
		}
	case event.Dial != nil:
		attrs = append(attrs,
			slog.String("buffer", event.Dial.Buffer),
			slog.String("outcome", event.Dial.Outcome.String()),
		)
		if event.Dial.Channel != 0 {
			attrs = append(attrs, slog.Int("resolved", event.Dial.Channel))
		}
	case event.Tune != nil:
		attrs = append(attrs,
			slog.String("command", event.Tune.Command),
			slog.Int("from", event.Tune.From),
			slog.Int("to", event.Tune.To),
			slog.Bool("valid", event.Tune.Valid),
		)
		if event.Tune.Fallback != 0 {
			attrs = append(attrs, slog.Int("fallback", event.Tune.Fallback))
		}
	case event.Egg != nil:
		attrs = append(attrs,
			slog.String("key", event.Egg.Key),
			slog.String("outcome", event.Egg.Outcome.String()),
		)
		if event.Egg.Remaining > 0 {
			attrs = append(attrs, slog.Duration("remaining", event.Egg.Remaining))
		}
		if event.Egg.Effect > 0 {
			attrs = append(attrs, slog.Duration("effect", event.Egg.Effect))
		}
	case event.Player != nil:
		attrs = append(attrs,
			slog.String("key", event.Player.Key),
			slog.Bool("ok", event.Player.OK),
		)
	case event.State != nil:
		attrs = append(attrs,
			slog.String("entity", event.State.Entity.String()),
			slog.String("old_state", event.State.OldState),
			slog.String("new_state", event.State.NewState),
		)
		if event.State.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.State.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_source", event.Error.Source.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "mapper", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
