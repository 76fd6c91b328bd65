package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tunedial/tunedial-go/pkg/eventlog"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := eventlog.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *eventlog.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *eventlog.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{"timestamp", "session_id", "source", "category", "channel", "type", "subject", "outcome"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		eventType, subject, outcome := flattenEvent(event)

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Source.String(),
			event.Category.String(),
			strconv.Itoa(event.Channel),
			eventType,
			subject,
			outcome,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// flattenEvent projects the typed payload onto the three free-form CSV
// columns: a type tag, the thing the event is about, and what happened
// to it.
func flattenEvent(event eventlog.Event) (eventType, subject, outcome string) {
	switch {
	case event.Signal != nil:
		eventType = "signal"
		subject = event.Signal.Event
		outcome = event.Signal.Match.String()
		if event.Signal.Debounced {
			outcome += " debounced"
		}
	case event.Dial != nil:
		eventType = "dial"
		subject = event.Dial.Buffer
		outcome = event.Dial.Outcome.String()
		if event.Dial.Outcome == eventlog.DialResolved {
			outcome = fmt.Sprintf("%s %d", outcome, event.Dial.Channel)
		}
	case event.Tune != nil:
		eventType = "tune"
		subject = fmt.Sprintf("%s %d->%d", event.Tune.Command, event.Tune.From, event.Tune.To)
		outcome = "valid"
		if !event.Tune.Valid {
			outcome = fmt.Sprintf("rejected, fallback %d", event.Tune.Fallback)
		}
	case event.Egg != nil:
		eventType = "egg"
		subject = event.Egg.Key
		outcome = event.Egg.Outcome.String()
	case event.Player != nil:
		eventType = "player"
		subject = event.Player.Key
		outcome = "sent"
		if !event.Player.OK {
			outcome = "failed"
		}
	case event.State != nil:
		eventType = "state"
		subject = event.State.Entity.String()
		outcome = fmt.Sprintf("%s->%s", event.State.OldState, event.State.NewState)
	case event.Error != nil:
		eventType = "error"
		subject = event.Error.Context
		outcome = event.Error.Message
	default:
		eventType = "unknown"
	}
	return eventType, subject, outcome
}
