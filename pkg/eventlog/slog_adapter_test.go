package eventlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSlogAdapterLogsSignalEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Source:    SourceReceiver,
		Category:  CategoryInput,
		Signal: &SignalEvent{
			Protocol: "NEC",
			Address:  "0x32",
			Command:  "0x11",
			Event:    "CHANNEL_UP",
			Match:    MatchMapped,
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	// Parse JSON log entry
	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	// Verify key fields
	if logEntry["session"] != "sess-123" {
		t.Errorf("session: got %v, want %q", logEntry["session"], "sess-123")
	}
	if logEntry["source"] != "RECEIVER" {
		t.Errorf("source: got %v, want %q", logEntry["source"], "RECEIVER")
	}
	if logEntry["protocol"] != "NEC" {
		t.Errorf("protocol: got %v, want %q", logEntry["protocol"], "NEC")
	}
	if logEntry["event"] != "CHANNEL_UP" {
		t.Errorf("event: got %v, want %q", logEntry["event"], "CHANNEL_UP")
	}
	if logEntry["match"] != "MAPPED" {
		t.Errorf("match: got %v, want %q", logEntry["match"], "MAPPED")
	}
}

func TestSlogAdapterLogsDialEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "sess-456",
		Source:    SourceDialer,
		Category:  CategoryAction,
		Dial: &DialEvent{
			Buffer:  "13",
			Outcome: DialResolved,
			Channel: 13,
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if logEntry["buffer"] != "13" {
		t.Errorf("buffer: got %v, want %q", logEntry["buffer"], "13")
	}
	if logEntry["outcome"] != "RESOLVED" {
		t.Errorf("outcome: got %v, want %q", logEntry["outcome"], "RESOLVED")
	}
	if logEntry["resolved"] != float64(13) {
		t.Errorf("resolved: got %v, want %v", logEntry["resolved"], 13)
	}
}

func TestSlogAdapterIncludesSessionID(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "abc12345-def6-7890",
		Source:    SourceService,
		Category:  CategoryState,
		State: &StateEvent{
			Entity:   EntityService,
			NewState: "running",
		},
	})

	output := buf.String()
	if !strings.Contains(output, "abc12345-def6-7890") {
		t.Error("output does not contain session ID")
	}
}

func TestSlogAdapterInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
