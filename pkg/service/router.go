package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tunedial/tunedial-go/pkg/channel"
	"github.com/tunedial/tunedial-go/pkg/dial"
	"github.com/tunedial/tunedial-go/pkg/display"
	"github.com/tunedial/tunedial-go/pkg/player"
	"github.com/tunedial/tunedial-go/pkg/remote"
	"github.com/tunedial/tunedial-go/pkg/station"
)

// RouterConfig configures the event router.
type RouterConfig struct {
	// DebounceWindow drops a repeat of the previous event arriving
	// within the window. Zero means the default.
	DebounceWindow time.Duration

	// FlashHold is how long the EFUP/EFDN codes stay up. Zero means the
	// default.
	FlashHold time.Duration

	// OverlayHold is how long the INFO/MENU codes stay up. Zero means
	// the default.
	OverlayHold time.Duration

	// PowerHold is the blank period during a power toggle. Zero means
	// the default.
	PowerHold time.Duration
}

// DefaultRouterConfig returns the stock router timing.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		DebounceWindow: 700 * time.Millisecond,
		FlashHold:      500 * time.Millisecond,
		OverlayHold:    1500 * time.Millisecond,
		PowerHold:      500 * time.Millisecond,
	}
}

// Router turns decoded remote events into pipeline calls. A repeat
// filter drops a same-event repeat arriving inside the debounce window,
// taming remotes that fire several frames per button press.
type Router struct {
	config RouterConfig

	dialer    *dial.Dialer
	tuner     *channel.Tuner
	panel     display.Panel
	player    player.Player
	publisher station.Publisher

	logger *slog.Logger

	// mu guards the repeat filter. Dispatch itself is not serialized
	// here; the dialer and tuner carry their own locks.
	mu     sync.Mutex
	last   remote.Event
	lastAt time.Time
}

// NewRouter creates a router with the stock timing.
func NewRouter(dialer *dial.Dialer, tuner *channel.Tuner, panel display.Panel, pl player.Player, publisher station.Publisher) *Router {
	return NewRouterWithConfig(DefaultRouterConfig(), dialer, tuner, panel, pl, publisher)
}

// NewRouterWithConfig creates a router. Zero config fields fall back to
// the defaults; nil collaborators fall back to discards.
func NewRouterWithConfig(config RouterConfig, dialer *dial.Dialer, tuner *channel.Tuner, panel display.Panel, pl player.Player, publisher station.Publisher) *Router {
	def := DefaultRouterConfig()
	if config.DebounceWindow <= 0 {
		config.DebounceWindow = def.DebounceWindow
	}
	if config.FlashHold <= 0 {
		config.FlashHold = def.FlashHold
	}
	if config.OverlayHold <= 0 {
		config.OverlayHold = def.OverlayHold
	}
	if config.PowerHold <= 0 {
		config.PowerHold = def.PowerHold
	}
	if panel == nil {
		panel = display.Noop{}
	}
	if pl == nil {
		pl = player.Noop{}
	}
	if publisher == nil {
		publisher = station.Noop{}
	}
	return &Router{
		config:    config,
		dialer:    dialer,
		tuner:     tuner,
		panel:     panel,
		player:    pl,
		publisher: publisher,
	}
}

// SetLogger sets the logger for debug output.
func (r *Router) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// HandleEvent runs one event through the repeat filter and, when it
// passes, the dispatch table. The return reports whether the event was
// dispatched or dropped as a repeat.
func (r *Router) HandleEvent(event remote.Event) bool {
	if !r.admit(event) {
		r.debugLog("repeat dropped", "event", event.String())
		return false
	}
	r.dispatch(event)
	return true
}

// admit updates the repeat filter. A dropped repeat does not move the
// window; it stays anchored at the last admitted event.
func (r *Router) admit(event remote.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if event == r.last && now.Sub(r.lastAt) < r.config.DebounceWindow {
		return false
	}
	r.last = event
	r.lastAt = now
	return true
}

func (r *Router) dispatch(event remote.Event) {
	if d, ok := event.Digit(); ok {
		if err := r.dialer.AddDigit(d); err != nil {
			r.debugLog("digit rejected", "digit", d, "error", err)
		}
		return
	}

	switch event {
	case remote.EventChannelUp:
		r.dialer.Clear()
		r.tuner.Step(channel.StepUp)

	case remote.EventChannelDown:
		r.dialer.Clear()
		r.tuner.Step(channel.StepDown)

	case remote.EventEffectNext:
		r.flash("EFUP", r.config.FlashHold)
		r.sendKey(player.KeyNextEffect)

	case remote.EventEffectPrev:
		r.flash("EFDN", r.config.FlashHold)
		r.sendKey(player.KeyPrevEffect)

	case remote.EventVolumeUp:
		r.sendKey(player.KeyVolumeUp)

	case remote.EventVolumeDown:
		r.sendKey(player.KeyVolumeDown)

	case remote.EventMute:
		r.sendKey(player.KeyMute)

	case remote.EventPause:
		r.sendKey(player.KeyPlayPause)

	case remote.EventOK:
		r.sendKey(player.KeyOK)

	case remote.EventPower:
		r.panel.Clear()
		time.Sleep(r.config.PowerHold)
		r.tuner.ShowCurrent()
		r.publisher.Publish(station.PowerToggle())

	case remote.EventInfo:
		r.flash("INFO", r.config.OverlayHold)
		r.publisher.Publish(station.Info())

	case remote.EventMenu:
		r.flash("MENU", r.config.OverlayHold)
		r.publisher.Publish(station.Menu())

	case remote.EventBack:
		r.publisher.Publish(station.Back())

	case remote.EventDigitalAnalog:
		if _, err := r.dialer.Trigger(event.String()); err != nil {
			r.debugLog("trigger failed", "key", event.String(), "error", err)
		}

	default:
		if event.IsUnmapped() || event.IsUnknown() {
			r.debugLog("ignoring signal", "event", event.String())
			return
		}
		r.debugLog("no handler", "event", event.String())
		r.publisher.Publish(station.NoHandler(event.String()))
	}
}

// flash shows a code and schedules the return to the current channel.
// The timer is not tracked; a later update simply wins the panel.
func (r *Router) flash(code string, hold time.Duration) {
	r.panel.ShowCode(code)
	time.AfterFunc(hold, r.tuner.ShowCurrent)
}

func (r *Router) sendKey(key string) {
	_ = r.player.SendKey(key)
}

func (r *Router) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
