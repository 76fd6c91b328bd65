package dial

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/tunedial/tunedial-go/pkg/cooldown"
	"github.com/tunedial/tunedial-go/pkg/display"
	"github.com/tunedial/tunedial-go/pkg/egg"
	"github.com/tunedial/tunedial-go/pkg/eventlog"
)

// Dialer errors.
var (
	ErrInvalidDigit = errors.New("digit out of range")
	ErrUnknownKey   = errors.New("no special action for key")
)

// Default timing.
const (
	// DefaultDigitTimeout is the quiet period after the last digit
	// before the buffer resolves as a channel number.
	DefaultDigitTimeout = 1500 * time.Millisecond

	// DefaultErrorHold is how long the error code stays on the panel.
	DefaultErrorHold = time.Second

	// DefaultSettleHold is the pause after a special action before
	// the panel returns to the current channel.
	DefaultSettleHold = time.Second
)

// State identifies the dialer's buffer state.
type State uint8

const (
	// StateIdle - empty buffer, no pending resolution.
	StateIdle State = 0

	// StateAccumulating - buffer holds digits, resolve timer armed.
	StateAccumulating State = 1
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAccumulating:
		return "ACCUMULATING"
	default:
		return "UNKNOWN"
	}
}

// Tuner is the channel registry the dialer resolves digit sequences
// into.
type Tuner interface {
	// Tune attempts a direct channel change and reports whether the
	// channel is a member of the configured list.
	Tune(channel int) bool

	// Current returns the active channel.
	Current() int
}

// Config holds dialer timing.
type Config struct {
	// DigitTimeout is the quiet period before the buffer resolves.
	// Zero means DefaultDigitTimeout.
	DigitTimeout time.Duration

	// ErrorHold is the panel hold for an unparseable buffer.
	// Zero means DefaultErrorHold.
	ErrorHold time.Duration

	// SettleHold is the pause after a special action completes.
	// Zero means DefaultSettleHold.
	SettleHold time.Duration
}

// Dialer accumulates dialed digits and resolves them into channel
// changes or special actions. All methods are safe for concurrent use.
type Dialer struct {
	mu sync.Mutex

	config Config

	// Digit buffer, mutated only under mu.
	buffer []byte

	// At most one pending resolve timer. A new digit, a match, or a
	// clear cancels and replaces it.
	timer *time.Timer

	display display.Sink
	tuner   Tuner
	eggs    *egg.Registry
	gate    *cooldown.Manager

	// Event capture (never nil; defaults to NoopLogger).
	events eventlog.Logger

	// Logger for debug output (optional).
	logger *slog.Logger
}

// NewDialer creates a dialer with default timing. The tuner, registry,
// and cooldown gate are required; a nil sink disables panel feedback.
func NewDialer(sink display.Sink, tuner Tuner, eggs *egg.Registry, gate *cooldown.Manager) *Dialer {
	return NewDialerWithConfig(Config{}, sink, tuner, eggs, gate)
}

// NewDialerWithConfig creates a dialer with the given timing. Zero
// config fields take the package defaults.
func NewDialerWithConfig(config Config, sink display.Sink, tuner Tuner, eggs *egg.Registry, gate *cooldown.Manager) *Dialer {
	if config.DigitTimeout <= 0 {
		config.DigitTimeout = DefaultDigitTimeout
	}
	if config.ErrorHold <= 0 {
		config.ErrorHold = DefaultErrorHold
	}
	if config.SettleHold <= 0 {
		config.SettleHold = DefaultSettleHold
	}
	if sink == nil {
		sink = display.Noop{}
	}
	return &Dialer{
		config:  config,
		display: sink,
		tuner:   tuner,
		eggs:    eggs,
		gate:    gate,
		events:  eventlog.NoopLogger{},
	}
}

// SetLogger sets the logger for debug output.
func (d *Dialer) SetLogger(logger *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
}

// SetEventLogger sets the event capture destination. Pass nil to
// disable capture.
func (d *Dialer) SetEventLogger(events eventlog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if events == nil {
		events = eventlog.NoopLogger{}
	}
	d.events = events
}

// State returns the dialer's buffer state.
func (d *Dialer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.buffer) == 0 {
		return StateIdle
	}
	return StateAccumulating
}

// Buffer returns the current digit sequence.
func (d *Dialer) Buffer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.buffer)
}

// AddDigit appends a digit to the buffer. The sequence echoes on the
// panel and the quiet-period timer restarts. An exact special-action
// match consumes the buffer immediately; otherwise the buffer resolves
// as a channel number once the quiet period elapses.
func (d *Dialer) AddDigit(digit int) error {
	if digit < 0 || digit > 9 {
		return ErrInvalidDigit
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.buffer = append(d.buffer, byte('0'+digit))
	seq := string(d.buffer)

	d.display.ShowDigits(seq)
	d.cancelTimerLocked()
	d.logDial(seq, eventlog.DialDigit, 0)
	d.debugLog("digit added", "buffer", seq)

	// Immediate match short-circuits the quiet period. A trigger
	// blocked by its cooldown still consumes the keystrokes.
	if d.eggs.Contains(seq) {
		d.logDial(seq, eventlog.DialMatched, 0)
		d.triggerLocked(seq)
		d.buffer = d.buffer[:0]
		return nil
	}

	d.armTimerLocked()
	return nil
}

// Clear cancels any pending resolution, empties the buffer, and
// returns the panel to the current channel. Safe to call in any state.
func (d *Dialer) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelTimerLocked()
	if len(d.buffer) > 0 {
		d.logDial(string(d.buffer), eventlog.DialCleared, 0)
		d.buffer = d.buffer[:0]
	}
	d.display.ShowChannel(d.tuner.Current())
}

// Trigger runs the special action registered for key, as if its
// sequence had just been dialed. It reports whether the action fired;
// a key outside its cooldown window returns (false, nil).
func (d *Dialer) Trigger(key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.triggerLocked(key)
}

// armTimerLocked schedules the quiet-period resolution for the
// current buffer. Caller holds d.mu.
func (d *Dialer) armTimerLocked() {
	var timer *time.Timer
	timer = time.AfterFunc(d.config.DigitTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.resolveLocked(timer)
	})
	d.timer = timer
}

// cancelTimerLocked stops any pending resolve timer. Caller holds d.mu.
func (d *Dialer) cancelTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// resolveLocked handles the quiet-period timer firing. Caller holds
// d.mu.
func (d *Dialer) resolveLocked(timer *time.Timer) {
	// Stale fire: a later digit, a match, or a clear replaced this
	// timer while its callback was already in flight.
	if d.timer != timer || len(d.buffer) == 0 {
		return
	}
	d.timer = nil

	seq := string(d.buffer)

	// Check the registry once more; keys can be registered while
	// digits accumulate.
	if d.eggs.Contains(seq) {
		d.logDial(seq, eventlog.DialMatched, 0)
		d.triggerLocked(seq)
		d.buffer = d.buffer[:0]
		return
	}

	channel, err := strconv.Atoi(seq)
	if err != nil {
		d.debugLog("buffer did not parse as a channel", "buffer", seq, "error", err)
		d.logDial(seq, eventlog.DialInvalid, 0)
		d.buffer = d.buffer[:0]
		d.display.ShowCode(display.CodeError)
		time.Sleep(d.config.ErrorHold)
		d.display.ShowChannel(d.tuner.Current())
		return
	}

	d.debugLog("buffer resolved", "buffer", seq, "channel", channel)
	d.logDial(seq, eventlog.DialResolved, channel)
	d.buffer = d.buffer[:0]
	d.tuner.Tune(channel)
}

// triggerLocked runs the trigger sequence for a special action:
// cooldown gate, panel label, activation, action, settle, redisplay.
// Caller holds d.mu.
func (d *Dialer) triggerLocked(key string) (bool, error) {
	desc, ok := d.eggs.Lookup(key)
	if !ok {
		d.logEgg(key, eventlog.EggUnknown, 0, 0)
		return false, ErrUnknownKey
	}

	if !d.gate.CanActivate(key, desc.Cooldown) {
		remaining := d.gate.TimeUntilAvailable(key, desc.Cooldown)
		d.debugLog("special action on cooldown", "key", key, "remaining", remaining.Round(time.Second))
		d.logEgg(key, eventlog.EggBlocked, remaining, 0)
		d.display.ShowCode(cooldownCode(remaining))
		time.Sleep(d.config.ErrorHold)
		d.display.ShowChannel(d.tuner.Current())
		return false, nil
	}

	if desc.Message != "" {
		d.debugLog(desc.Message, "key", key)
	}
	if desc.Label != "" {
		d.display.ShowCode(desc.Label)
	}

	// The activation stands even if the action fails below.
	d.gate.Activate(key, desc.Cooldown, desc.EffectDuration, desc.Cleanup)
	d.logEgg(key, eventlog.EggFired, 0, desc.EffectDuration)

	if err := desc.Action.Run(); err != nil {
		d.debugLog("special action failed", "key", key, "action", desc.Action.Name(), "error", err)
		d.events.Log(eventlog.Event{
			Source:   eventlog.SourceEggs,
			Category: eventlog.CategoryError,
			Channel:  d.tuner.Current(),
			Error: &eventlog.ErrorEvent{
				Source:  eventlog.SourceEggs,
				Message: err.Error(),
				Context: "action " + desc.Action.Name(),
			},
		})
	}

	time.Sleep(d.config.SettleHold)
	d.display.ShowChannel(d.tuner.Current())
	return true, nil
}

// cooldownCode renders the time left in a cooldown window as a panel
// code: whole minutes when a minute or more remains, seconds below
// that.
func cooldownCode(remaining time.Duration) string {
	secs := int(remaining.Round(time.Second).Seconds())
	if secs >= 60 {
		minutes := secs / 60
		if minutes > 99 {
			minutes = 99
		}
		return fmt.Sprintf("CD%02d", minutes)
	}
	return fmt.Sprintf("CD%02d", secs)
}

// logDial captures digit-buffer activity.
func (d *Dialer) logDial(buffer string, outcome eventlog.DialOutcome, channel int) {
	d.events.Log(eventlog.Event{
		Source:   eventlog.SourceDialer,
		Category: eventlog.CategoryInput,
		Channel:  d.tuner.Current(),
		Dial:     &eventlog.DialEvent{Buffer: buffer, Outcome: outcome, Channel: channel},
	})
}

// logEgg captures a special-action trigger result.
func (d *Dialer) logEgg(key string, outcome eventlog.EggOutcome, remaining, effect time.Duration) {
	d.events.Log(eventlog.Event{
		Source:   eventlog.SourceEggs,
		Category: eventlog.CategoryAction,
		Channel:  d.tuner.Current(),
		Egg:      &eventlog.EggEvent{Key: key, Outcome: outcome, Remaining: remaining, Effect: effect},
	})
}

// debugLog logs a message if a logger is configured.
func (d *Dialer) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
