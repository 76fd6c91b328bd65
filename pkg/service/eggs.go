package service

import (
	"fmt"
	"time"

	"github.com/tunedial/tunedial-go/pkg/channel"
	"github.com/tunedial/tunedial-go/pkg/cooldown"
	"github.com/tunedial/tunedial-go/pkg/display"
	"github.com/tunedial/tunedial-go/pkg/egg"
	"github.com/tunedial/tunedial-go/pkg/player"
	"github.com/tunedial/tunedial-go/pkg/remote"
)

// Frame pacing inside the stock actions.
const (
	// DefaultPulseHold is the pause between the emergency light-up and
	// its panel card.
	DefaultPulseHold = 500 * time.Millisecond

	// DefaultFrameHold is the pause between cards in multi-card
	// sequences.
	DefaultFrameHold = time.Second
)

// EggDeps are the collaborators the stock special actions drive.
type EggDeps struct {
	// Panel is the front panel with its light strip. Nil runs dark.
	Panel display.Panel

	// Player injects keys into the media player window. Nil discards.
	Player player.Player

	// Tuner retunes to the first lineup channel on a full reset.
	Tuner *channel.Tuner

	// Gate is wiped on a full reset.
	Gate *cooldown.Manager

	// PulseHold overrides DefaultPulseHold when positive.
	PulseHold time.Duration

	// FrameHold overrides DefaultFrameHold when positive.
	FrameHold time.Duration
}

func (d EggDeps) normalized() EggDeps {
	if d.Panel == nil {
		d.Panel = display.Noop{}
	}
	if d.Player == nil {
		d.Player = player.Noop{}
	}
	if d.PulseHold <= 0 {
		d.PulseHold = DefaultPulseHold
	}
	if d.FrameHold <= 0 {
		d.FrameHold = DefaultFrameHold
	}
	return d
}

// BuildDefaultEggs returns the stock special-action set. Player failures
// inside actions are dropped; the player records them itself.
func BuildDefaultEggs(deps EggDeps) []egg.Descriptor {
	deps = deps.normalized()
	panel := deps.Panel
	pl := deps.Player

	reset := func() error {
		if deps.Gate != nil {
			deps.Gate.CleanupAll()
		}
		panel.SetLight("off")
		if deps.Tuner != nil {
			if lineup := deps.Tuner.Channels(); len(lineup) > 0 {
				deps.Tuner.Tune(lineup[0])
			}
		}
		_ = pl.SendKey(player.KeyClearOverlays)
		return nil
	}

	return []egg.Descriptor{
		{
			Key:     "911",
			Label:   "SHIT",
			Message: "emergency mode engaged",
			Action: egg.NewActionFunc("emergency-mode", func() error {
				panel.SetLight("red-blue 10")
				time.Sleep(deps.PulseHold)
				panel.ShowCode("COPS")
				return nil
			}),
			Cleanup:        func() { panel.SetLight("off") },
			Cooldown:       time.Hour,
			EffectDuration: 30 * time.Minute,
			Description:    "Emergency mode (30m active, 1h cooldown)",
		},
		{
			Key:     "666",
			Label:   "666",
			Message: "demon mode engaged",
			Action: egg.NewActionFunc("demon-mode", func() error {
				_ = pl.SendKey(player.KeyMute)
				panel.SetLight("red-pulse 5")
				return nil
			}),
			Cleanup: func() {
				panel.SetLight("off")
				_ = pl.SendKey(player.KeyClearOverlays)
			},
			Cooldown:       30 * time.Minute,
			EffectDuration: 15 * time.Minute,
			Description:    "Demon mode (15m active, 30m cooldown)",
		},
		{
			Key:     "420",
			Label:   "YAH",
			Message: "party mode engaged",
			Action: egg.NewActionFunc("party-time", func() error {
				_ = pl.SendKey(player.KeyPartyOverlay)
				panel.SetLight("rainbow 30")
				time.Sleep(deps.FrameHold)
				panel.ShowCode("RAST")
				time.Sleep(deps.FrameHold)
				panel.ShowCode("FARI")
				time.Sleep(deps.FrameHold)
				return nil
			}),
			Cleanup: func() {
				panel.SetLight("off")
				_ = pl.SendKey(player.KeyClearOverlays)
			},
			Cooldown:       40 * time.Minute,
			EffectDuration: 20 * time.Minute,
			Description:    "Party mode (20m active, 40m cooldown)",
		},
		{
			Key:         "1234",
			Label:       " RST",
			Message:     "system reset",
			Action:      egg.NewActionFunc("full-reset", reset),
			Cooldown:    3 * time.Second,
			Description: "Test mode (aka reset) (instant, 3s cooldown)",
		},
		{
			Key:         "0000",
			Label:       "RST",
			Message:     "system reset",
			Action:      egg.NewActionFunc("full-reset", reset),
			Cooldown:    3 * time.Second,
			Description: "Full reset (instant, 3s cooldown)",
		},
		{
			Key:     "404",
			Label:   "404",
			Message: "error page",
			Action: egg.NewActionFunc("error-page", func() error {
				panel.ShowCode(display.CodeError)
				time.Sleep(deps.FrameHold)
				return nil
			}),
			Cooldown:    time.Minute,
			Description: "404 error (instant, 1m cooldown)",
		},
		{
			Key:     remote.EventDigitalAnalog.String(),
			Label:   "8BIT",
			Message: "crossfade toggled",
			Action: egg.NewActionFunc("crossfade", func() error {
				return pl.SendKey(player.KeyCrossfade)
			}),
			Cooldown:    3 * time.Second,
			Description: "Digital/Analog effect (instant, 3s cooldown)",
		},
	}
}

// EggSpec declares a special action assembled from named parts: a panel
// card, a light-strip effect, and a player key, run in that order. It is
// the config-file form of an egg.
type EggSpec struct {
	// Key is the trigger token: a digit sequence or an event name.
	Key string

	// Label is shown when the trigger fires. Defaults to Key.
	Label string

	// Code is the panel card the action shows. Empty shows none.
	Code string

	// Light is the light-strip effect, e.g. "rainbow 30". Empty leaves
	// the strip alone.
	Light string

	// PlayerKey is injected into the media player window. Empty sends
	// none.
	PlayerKey string

	// Cooldown is the minimum interval between activations.
	Cooldown time.Duration

	// Effect is how long the effect stays active before cleanup. Zero
	// declares an instant action.
	Effect time.Duration

	// Description summarizes the action for status listings.
	Description string
}

// Validate checks if the spec describes a buildable action.
func (s EggSpec) Validate() error {
	if s.Key == "" {
		return fmt.Errorf("%w: egg with empty key", ErrInvalidConfig)
	}
	if s.Code == "" && s.Light == "" && s.PlayerKey == "" {
		return fmt.Errorf("%w: egg %q has no action parts", ErrInvalidConfig, s.Key)
	}
	if s.Cooldown < 0 || s.Effect < 0 {
		return fmt.Errorf("%w: egg %q has negative timing", ErrInvalidConfig, s.Key)
	}
	return nil
}

// Build assembles the descriptor for the spec. Timed specs clean up by
// turning the light strip off and clearing player overlays, matching the
// stock set.
func (s EggSpec) Build(deps EggDeps) egg.Descriptor {
	deps = deps.normalized()
	panel := deps.Panel
	pl := deps.Player

	label := s.Label
	if label == "" {
		label = s.Key
	}

	d := egg.Descriptor{
		Key:     s.Key,
		Label:   label,
		Message: "custom action " + s.Key,
		Action: egg.NewActionFunc(s.Key, func() error {
			if s.Code != "" {
				panel.ShowCode(s.Code)
			}
			if s.Light != "" {
				panel.SetLight(s.Light)
			}
			if s.PlayerKey != "" {
				_ = pl.SendKey(s.PlayerKey)
			}
			return nil
		}),
		Cooldown:       s.Cooldown,
		EffectDuration: s.Effect,
		Description:    s.Description,
	}
	if s.Effect > 0 {
		d.Cleanup = func() {
			if s.Light != "" {
				panel.SetLight("off")
			}
			if s.PlayerKey != "" {
				_ = pl.SendKey(player.KeyClearOverlays)
			}
		}
	}
	return d
}
