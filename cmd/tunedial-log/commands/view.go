// Package commands implements the tunedial-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tunedial/tunedial-go/pkg/eventlog"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Source   *eventlog.Source
	Category *eventlog.Category
	Session  string
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event eventlog.Event) {
	// Header line: timestamp [sess:id] SOURCE CATEGORY Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	sess := shortenSessionID(event.SessionID)

	var typeLabel string
	switch {
	case event.Signal != nil:
		typeLabel = "Signal"
	case event.Dial != nil:
		typeLabel = "Dial"
	case event.Tune != nil:
		typeLabel = "Tune"
	case event.Egg != nil:
		typeLabel = "Egg"
	case event.Player != nil:
		typeLabel = "Key"
	case event.State != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [sess:%s] %-8s %-6s %s\n",
		ts, sess, event.Source.String(), event.Category.String(), typeLabel)

	switch {
	case event.Signal != nil:
		formatSignalDetails(w, event.Signal)
	case event.Dial != nil:
		formatDialDetails(w, event.Dial)
	case event.Tune != nil:
		formatTuneDetails(w, event.Tune)
	case event.Egg != nil:
		formatEggDetails(w, event.Egg)
	case event.Player != nil:
		formatPlayerDetails(w, event.Player)
	case event.State != nil:
		formatStateDetails(w, event.State)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	if event.Channel != 0 {
		fmt.Fprintf(w, "  Channel: %d\n", event.Channel)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatSignalDetails writes decoded-signal details.
func formatSignalDetails(w io.Writer, sig *eventlog.SignalEvent) {
	if sig.Protocol != "" {
		fmt.Fprintf(w, "  Signal: %s %s %s\n", sig.Protocol, sig.Address, sig.Command)
	}
	fmt.Fprintf(w, "  Event: %s (%s)", sig.Event, sig.Match.String())
	if sig.Debounced {
		fmt.Fprint(w, " dropped by repeat filter")
	}
	fmt.Fprintln(w)
}

// formatDialDetails writes digit-buffer details.
func formatDialDetails(w io.Writer, d *eventlog.DialEvent) {
	fmt.Fprintf(w, "  Buffer: %q\n", d.Buffer)
	fmt.Fprintf(w, "  Outcome: %s", d.Outcome.String())
	if d.Outcome == eventlog.DialResolved {
		fmt.Fprintf(w, " -> channel %d", d.Channel)
	}
	fmt.Fprintln(w)
}

// formatTuneDetails writes channel-change details.
func formatTuneDetails(w io.Writer, t *eventlog.TuneEvent) {
	fmt.Fprintf(w, "  %s: %d -> %d\n", t.Command, t.From, t.To)
	if !t.Valid {
		fmt.Fprintf(w, "  Rejected, display reverted to %d\n", t.Fallback)
	}
}

// formatEggDetails writes special-action details.
func formatEggDetails(w io.Writer, e *eventlog.EggEvent) {
	fmt.Fprintf(w, "  Key: %s\n", e.Key)
	fmt.Fprintf(w, "  Outcome: %s\n", e.Outcome.String())
	if e.Outcome == eventlog.EggBlocked && e.Remaining > 0 {
		fmt.Fprintf(w, "  Cooldown left: %s\n", formatDuration(e.Remaining))
	}
	if e.Effect > 0 {
		fmt.Fprintf(w, "  Effect: %s\n", formatDuration(e.Effect))
	}
}

// formatPlayerDetails writes player key-injection details.
func formatPlayerDetails(w io.Writer, p *eventlog.PlayerEvent) {
	status := "sent"
	if !p.OK {
		status = "FAILED"
	}
	fmt.Fprintf(w, "  Key: %q %s\n", p.Key, status)
}

// formatStateDetails writes state change details.
func formatStateDetails(w io.Writer, sc *eventlog.StateEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *eventlog.ErrorEvent) {
	fmt.Fprintf(w, "  Source: %s\n", err.Source.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// ParseSourceFlag parses a source string from a command-line flag
// (case-insensitive).
func ParseSourceFlag(s string) (eventlog.Source, error) {
	return parseSource(s)
}

// parseSource parses a source string (case-insensitive).
func parseSource(s string) (eventlog.Source, error) {
	switch strings.ToLower(s) {
	case "receiver":
		return eventlog.SourceReceiver, nil
	case "router":
		return eventlog.SourceRouter, nil
	case "dialer":
		return eventlog.SourceDialer, nil
	case "tuner":
		return eventlog.SourceTuner, nil
	case "eggs":
		return eventlog.SourceEggs, nil
	case "player":
		return eventlog.SourcePlayer, nil
	case "service":
		return eventlog.SourceService, nil
	default:
		return 0, fmt.Errorf("invalid source: %s (must be receiver, router, dialer, tuner, eggs, player, or service)", s)
	}
}

// ParseCategoryFlag parses a category string from a command-line flag
// (case-insensitive).
func ParseCategoryFlag(s string) (eventlog.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (eventlog.Category, error) {
	switch strings.ToLower(s) {
	case "input":
		return eventlog.CategoryInput, nil
	case "action":
		return eventlog.CategoryAction, nil
	case "state":
		return eventlog.CategoryState, nil
	case "error":
		return eventlog.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be input, action, state, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := eventlog.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		// Apply filter
		if filter.Session != "" && event.SessionID != filter.Session {
			continue
		}
		if filter.Source != nil && event.Source != *filter.Source {
			continue
		}
		if filter.Category != nil && event.Category != *filter.Category {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}
