package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/tunedial/tunedial-go/pkg/eventlog"
)

// ErrNoWindow is returned when no player window is visible.
var ErrNoWindow = errors.New("no player window visible")

// Default window targeting.
const (
	DefaultWindowClass = "mpv"
	DefaultDisplay     = ":0"
)

// MPV sends keys to an mpv window through xdotool. Keys land in the
// first visible window of the configured class.
type MPV struct {
	windowClass string
	xDisplay    string

	// Event capture (never nil; defaults to NoopLogger).
	events eventlog.Logger

	// Logger for debug output (optional).
	logger *slog.Logger
}

// NewMPV creates a player targeting the default mpv window on the
// default X display.
func NewMPV() *MPV {
	return NewMPVWithTarget(DefaultWindowClass, DefaultDisplay)
}

// NewMPVWithTarget creates a player targeting windowClass on xDisplay.
// Empty arguments take the package defaults.
func NewMPVWithTarget(windowClass, xDisplay string) *MPV {
	if windowClass == "" {
		windowClass = DefaultWindowClass
	}
	if xDisplay == "" {
		xDisplay = DefaultDisplay
	}
	return &MPV{
		windowClass: windowClass,
		xDisplay:    xDisplay,
		events:      eventlog.NoopLogger{},
	}
}

// SetLogger sets the logger for debug output.
func (m *MPV) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// SetEventLogger sets the event capture destination. Pass nil to
// disable capture.
func (m *MPV) SetEventLogger(events eventlog.Logger) {
	if events == nil {
		events = eventlog.NoopLogger{}
	}
	m.events = events
}

// SendKey presses key in the player window.
func (m *MPV) SendKey(key string) error {
	err := m.sendKey(key)
	m.logKey(key, err == nil)
	if err != nil {
		m.debugLog("key injection failed", "key", key, "error", err)
		return err
	}
	m.debugLog("key sent", "key", key)
	return nil
}

// Running reports whether a player window is visible.
func (m *MPV) Running() bool {
	windows, err := m.windows()
	return err == nil && len(windows) > 0
}

// Windows returns the IDs of all visible player windows.
func (m *MPV) Windows() ([]string, error) {
	return m.windows()
}

func (m *MPV) sendKey(key string) error {
	windows, err := m.windows()
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		return ErrNoWindow
	}

	cmd := exec.Command("xdotool", "key", "--window", windows[0], key)
	cmd.Env = append(os.Environ(), "DISPLAY="+m.xDisplay)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sending key %q: %w", key, err)
	}
	return nil
}

func (m *MPV) windows() ([]string, error) {
	cmd := exec.Command("xdotool", "search", "--onlyvisible", "--class", m.windowClass)
	cmd.Env = append(os.Environ(), "DISPLAY="+m.xDisplay)

	out, err := cmd.Output()
	if err != nil {
		// xdotool exits nonzero when nothing matches.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("running xdotool: %w", err)
	}

	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// logKey captures a key injection attempt.
func (m *MPV) logKey(key string, ok bool) {
	m.events.Log(eventlog.Event{
		Source:   eventlog.SourcePlayer,
		Category: eventlog.CategoryAction,
		Player:   &eventlog.PlayerEvent{Key: key, OK: ok},
	})
}

// debugLog logs a message if a logger is configured.
func (m *MPV) debugLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

var _ Player = (*MPV)(nil)
