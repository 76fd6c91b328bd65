// Package channel tracks the station's channel lineup and the current
// selection. Steps wrap around both ends of the ordered lineup.
package channel

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tunedial/tunedial-go/pkg/display"
	"github.com/tunedial/tunedial-go/pkg/eventlog"
	"github.com/tunedial/tunedial-go/pkg/station"
)

// ErrNoChannels is returned when a tuner is constructed with an empty
// lineup.
var ErrNoChannels = errors.New("channel list is empty")

// Default timing.
const (
	// DefaultRejectHold is how long the rejection code stays on the
	// panel before the unchanged channel returns.
	DefaultRejectHold = 800 * time.Millisecond

	// DefaultStepHold is how long the directional indicator stays on
	// the panel before the new channel appears.
	DefaultStepHold = 400 * time.Millisecond
)

// Step directions.
const (
	StepUp   = 1
	StepDown = -1
)

// Config holds tuner timing.
type Config struct {
	// RejectHold is the panel hold for a rejected tune.
	// Zero means DefaultRejectHold.
	RejectHold time.Duration

	// StepHold is the panel hold for the directional indicator.
	// Zero means DefaultStepHold.
	StepHold time.Duration
}

// Tuner holds the ordered channel lineup and the current selection.
// All methods are safe for concurrent use; the dialer's resolve timer
// and the router both reach it.
type Tuner struct {
	mu sync.Mutex

	config   Config
	channels []int
	current  int

	display   display.Sink
	publisher station.Publisher

	// Event capture (never nil; defaults to NoopLogger).
	events eventlog.Logger

	// Logger for debug output (optional).
	logger *slog.Logger
}

// NewTuner creates a tuner with default timing, starting on the first
// channel of the lineup.
func NewTuner(channels []int, sink display.Sink, publisher station.Publisher) (*Tuner, error) {
	return NewTunerWithConfig(Config{}, channels, sink, publisher)
}

// NewTunerWithConfig creates a tuner with the given timing. Zero config
// fields take the package defaults. A nil sink disables panel feedback
// and a nil publisher discards commands.
func NewTunerWithConfig(config Config, channels []int, sink display.Sink, publisher station.Publisher) (*Tuner, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if config.RejectHold <= 0 {
		config.RejectHold = DefaultRejectHold
	}
	if config.StepHold <= 0 {
		config.StepHold = DefaultStepHold
	}
	if sink == nil {
		sink = display.Noop{}
	}
	if publisher == nil {
		publisher = station.Noop{}
	}

	lineup := make([]int, len(channels))
	copy(lineup, channels)

	return &Tuner{
		config:    config,
		channels:  lineup,
		current:   lineup[0],
		display:   sink,
		publisher: publisher,
		events:    eventlog.NoopLogger{},
	}, nil
}

// SetLogger sets the logger for debug output.
func (t *Tuner) SetLogger(logger *slog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger = logger
}

// SetEventLogger sets the event capture destination. Pass nil to
// disable capture.
func (t *Tuner) SetEventLogger(events eventlog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if events == nil {
		events = eventlog.NoopLogger{}
	}
	t.events = events
}

// Tune attempts a direct change to channel n and reports whether n is
// in the lineup. A member becomes the current channel and shows on the
// panel. A non-member shows the rejection code, holds, and puts the
// unchanged channel back; the publish carries valid=false and the
// fallback channel so the station can ignore the attempt.
func (t *Tuner) Tune(n int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.memberLocked(n) {
		from := t.current
		t.current = n
		t.display.ShowChannel(n)
		t.publisher.Publish(station.Direct(n, true, 0))
		t.logTune(station.CmdDirect, from, n, true, 0)
		t.debugLog("tuned", "channel", n)
		return true
	}

	t.debugLog("rejected tune", "channel", n, "current", t.current)
	t.display.ShowCode(display.CodeReject)
	time.Sleep(t.config.RejectHold)
	t.display.ShowChannel(t.current)
	t.publisher.Publish(station.Direct(n, false, t.current))
	t.logTune(station.CmdDirect, t.current, n, false, t.current)
	return false
}

// Step moves the selection one place through the lineup, wrapping at
// both ends, and returns the new channel. Non-negative directions step
// up. The directional indicator holds briefly before the new channel
// appears.
func (t *Tuner) Step(direction int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	up := direction >= 0
	if up {
		t.display.ShowCode(display.CodeUp)
	} else {
		t.display.ShowCode(display.CodeDown)
	}
	time.Sleep(t.config.StepHold)

	n := len(t.channels)
	idx := t.indexLocked(t.current)
	next := t.channels[((idx+direction)%n+n)%n]

	from := t.current
	t.current = next
	t.display.ShowChannel(next)

	if up {
		t.publisher.Publish(station.Up(next))
		t.logTune(station.CmdUp, from, next, true, 0)
	} else {
		t.publisher.Publish(station.Down(next))
		t.logTune(station.CmdDown, from, next, true, 0)
	}
	t.debugLog("stepped", "direction", direction, "channel", next)
	return next
}

// Current returns the current channel.
func (t *Tuner) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Channels returns a copy of the lineup.
func (t *Tuner) Channels() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int, len(t.channels))
	copy(out, t.channels)
	return out
}

// ShowCurrent puts the current channel on the panel.
func (t *Tuner) ShowCurrent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.display.ShowChannel(t.current)
}

// SetCurrent moves the selection without feedback or publishing, for
// seeding the starting channel. It reports whether channel is in the
// lineup; a non-member leaves the selection unchanged.
func (t *Tuner) SetCurrent(channel int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.memberLocked(channel) {
		return false
	}
	t.current = channel
	return true
}

// memberLocked reports lineup membership. Caller holds t.mu.
func (t *Tuner) memberLocked(channel int) bool {
	for _, c := range t.channels {
		if c == channel {
			return true
		}
	}
	return false
}

// indexLocked returns the lineup index of channel, or 0 when the
// selection is not in the lineup. Caller holds t.mu.
func (t *Tuner) indexLocked(channel int) int {
	for i, c := range t.channels {
		if c == channel {
			return i
		}
	}
	return 0
}

// logTune captures a channel change attempt.
func (t *Tuner) logTune(command string, from, to int, valid bool, fallback int) {
	t.events.Log(eventlog.Event{
		Source:   eventlog.SourceTuner,
		Category: eventlog.CategoryAction,
		Channel:  t.current,
		Tune: &eventlog.TuneEvent{
			Command:  command,
			From:     from,
			To:       to,
			Valid:    valid,
			Fallback: fallback,
		},
	})
}

// debugLog logs a message if a logger is configured.
func (t *Tuner) debugLog(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}
