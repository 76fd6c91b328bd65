// Package station publishes channel commands to the station runtime.
package station

import "time"

// Command names understood by the station runtime.
const (
	CmdDirect      = "direct"
	CmdUp          = "up"
	CmdDown        = "down"
	CmdPowerToggle = "power_toggle"
	CmdInfo        = "info"
	CmdMenu        = "menu"
	CmdBack        = "back"
	CmdNoHandler   = "no_handler"
)

// Command is one command published to the station runtime. The JSON shape is
// shared with the station's own tuner, so field names and the float-seconds
// timestamp are fixed.
type Command struct {
	Name            string  `json:"command"`
	Channel         *int    `json:"channel,omitempty"`
	Valid           *bool   `json:"valid,omitempty"`
	FallbackChannel *int    `json:"fallback_channel,omitempty"`
	Event           string  `json:"event,omitempty"`
	Timestamp       float64 `json:"timestamp"`
}

// stamped returns c with the timestamp filled in if the caller left it zero.
func (c Command) stamped() Command {
	if c.Timestamp == 0 {
		c.Timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}
	return c
}

// Direct reports a direct tune attempt. For an invalid channel the command
// carries valid=false and the channel the display fell back to; the station
// decides what to do with the attempt.
func Direct(channel int, valid bool, fallback int) Command {
	cmd := Command{Name: CmdDirect, Channel: &channel, Valid: &valid}
	if !valid {
		cmd.FallbackChannel = &fallback
	}
	return cmd
}

// Up reports a channel-up step that landed on channel.
func Up(channel int) Command {
	return Command{Name: CmdUp, Channel: &channel}
}

// Down reports a channel-down step that landed on channel.
func Down(channel int) Command {
	return Command{Name: CmdDown, Channel: &channel}
}

// PowerToggle asks the station to toggle power.
func PowerToggle() Command {
	return Command{Name: CmdPowerToggle}
}

// Info asks the station to show its info overlay.
func Info() Command {
	return Command{Name: CmdInfo}
}

// Menu asks the station to open its menu.
func Menu() Command {
	return Command{Name: CmdMenu}
}

// Back asks the station to navigate back.
func Back() Command {
	return Command{Name: CmdBack}
}

// NoHandler reports an event nothing in the pipeline handled, so the
// station can decide whether it cares.
func NoHandler(event string) Command {
	return Command{Name: CmdNoHandler, Event: event}
}
