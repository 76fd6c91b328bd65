package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tunedial/tunedial-go/pkg/remote"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Stock paths matching the station deployment this daemon ships with.
const (
	// DefaultFlipperDevice is the Flipper Zero CLI serial port.
	DefaultFlipperDevice = "/dev/ttyACM0"

	// DefaultSocketPath is the station's channel command socket.
	DefaultSocketPath = "/home/appuser/FieldStation42/runtime/channel.socket"
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateStarting - service is starting up.
	StateStarting

	// StateRunning - service is running normally.
	StateRunning

	// StateStopping - service is shutting down.
	StateStopping

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Service.
type Config struct {
	// Channels is the ordered channel lineup. Steps wrap around its ends.
	Channels []int

	// InitialChannel is the channel selected after boot.
	// Must be a member of Channels.
	InitialChannel int

	// DigitTimeout is the quiet period after the last digit before the
	// buffer resolves to a channel number.
	DigitTimeout time.Duration

	// DebounceWindow drops a repeat of the previous event arriving
	// within the window.
	DebounceWindow time.Duration

	// ErrorHold is how long the dial error code stays up.
	ErrorHold time.Duration

	// SettleHold is the pause after a special action before the panel
	// returns to the current channel.
	SettleHold time.Duration

	// RejectHold is how long the rejected-channel code stays up.
	RejectHold time.Duration

	// StepHold is how long the channel-step indicator stays up.
	StepHold time.Duration

	// FlashHold is how long brief feedback codes (EFUP, EFDN) stay up.
	FlashHold time.Duration

	// OverlayHold is how long the INFO and MENU codes stay up.
	OverlayHold time.Duration

	// PowerHold is the blank period during a power toggle.
	PowerHold time.Duration

	// FlipperDevice is the Flipper Zero serial port. Empty runs the
	// service without a receiver; events must be injected.
	FlipperDevice string

	// DisplayDevice is the segment-display serial port. Empty runs the
	// service headless unless a panel is injected.
	DisplayDevice string

	// Brightness is the panel brightness (0-7).
	Brightness int

	// SocketPath is the station command socket. Empty disables
	// publishing unless a publisher is injected.
	SocketPath string

	// PlayerWindowClass is the X11 class of the media player window.
	PlayerWindowClass string

	// PlayerDisplay is the X display holding the player window.
	PlayerDisplay string

	// StatusAddress is the TCP listen address of the status endpoint.
	// Empty disables the endpoint.
	StatusAddress string

	// MDNS advertises the status endpoint via multicast DNS.
	MDNS bool

	// EventLogPath appends captured events to a .tdlog file.
	// Empty disables file capture.
	EventLogPath string

	// Keymaps replaces the built-in remote tables when non-empty.
	Keymaps []remote.Remote

	// ExtraEggs are registered on top of the default special actions.
	ExtraEggs []EggSpec

	// SkipGreeting skips the boot and farewell animations.
	SkipGreeting bool

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the stock station setup.
func DefaultConfig() Config {
	return Config{
		Channels:          []int{1, 2, 3, 8, 9, 13},
		InitialChannel:    1,
		DigitTimeout:      1500 * time.Millisecond,
		DebounceWindow:    700 * time.Millisecond,
		ErrorHold:         time.Second,
		SettleHold:        time.Second,
		RejectHold:        800 * time.Millisecond,
		StepHold:          400 * time.Millisecond,
		FlashHold:         500 * time.Millisecond,
		OverlayHold:       1500 * time.Millisecond,
		PowerHold:         500 * time.Millisecond,
		FlipperDevice:     DefaultFlipperDevice,
		Brightness:        7,
		SocketPath:        DefaultSocketPath,
		PlayerWindowClass: "mpv",
		PlayerDisplay:     ":0",
		StatusAddress:     ":8732",
	}
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return fmt.Errorf("%w: channel list is empty", ErrInvalidConfig)
	}
	member := false
	for _, ch := range c.Channels {
		if ch <= 0 {
			return fmt.Errorf("%w: channel %d is not positive", ErrInvalidConfig, ch)
		}
		if ch == c.InitialChannel {
			member = true
		}
	}
	if !member {
		return fmt.Errorf("%w: initial channel %d is not in the lineup", ErrInvalidConfig, c.InitialChannel)
	}
	if c.DigitTimeout < 0 || c.DebounceWindow < 0 {
		return fmt.Errorf("%w: negative timing", ErrInvalidConfig)
	}
	for _, hold := range []time.Duration{
		c.ErrorHold, c.SettleHold, c.RejectHold, c.StepHold,
		c.FlashHold, c.OverlayHold, c.PowerHold,
	} {
		if hold < 0 {
			return fmt.Errorf("%w: negative hold", ErrInvalidConfig)
		}
	}
	if c.Brightness < 0 || c.Brightness > 7 {
		return fmt.Errorf("%w: brightness %d out of range 0-7", ErrInvalidConfig, c.Brightness)
	}
	for _, spec := range c.ExtraEggs {
		if err := spec.Validate(); err != nil {
			return err
		}
	}
	return nil
}
