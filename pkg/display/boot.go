package display

import (
	"context"
	"time"
)

// Step is one frame of a panel animation.
type Step struct {
	Text string
	Hold time.Duration
}

// BootSteps returns the stock power-on animation. The final frame is
// followed by the current channel, shown by Play.
func BootSteps() []Step {
	return []Step{
		{Text: "----", Hold: 800 * time.Millisecond},
		{Text: "ACId", Hold: 400 * time.Millisecond},
		{Text: "BOOT", Hold: 2 * time.Second},
		{Text: "redY", Hold: 1500 * time.Millisecond},
	}
}

// FarewellSteps returns the shutdown animation. Callers clear the panel
// after playing it.
func FarewellSteps() []Step {
	return []Step{
		{Text: "BYE", Hold: time.Second},
	}
}

// Play shows each step on the sink, holding between frames, then settles on
// the given channel. A channel of zero or less leaves the last frame up, for
// animations the caller ends with a clear. Returns early with ctx.Err() if
// ctx is cancelled.
func Play(ctx context.Context, sink Sink, steps []Step, channel int) error {
	for _, step := range steps {
		sink.ShowCode(step.Text)
		select {
		case <-time.After(step.Hold):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if channel > 0 {
		sink.ShowChannel(channel)
	}
	return nil
}
