package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tunedial/tunedial-go/pkg/eventlog"
)

func TestStatsCountsBySource(t *testing.T) {
	ts := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	events := []eventlog.Event{
		{Timestamp: ts, Source: eventlog.SourceReceiver, Category: eventlog.CategoryInput},
		{Timestamp: ts, Source: eventlog.SourceReceiver, Category: eventlog.CategoryInput},
		{Timestamp: ts, Source: eventlog.SourceDialer, Category: eventlog.CategoryAction},
		{Timestamp: ts, Source: eventlog.SourceTuner, Category: eventlog.CategoryAction},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "RECEIVER:  2") {
		t.Errorf("expected receiver count, got:\n%s", output)
	}
	if !strings.Contains(output, "DIALER:") {
		t.Error("expected DIALER source in output")
	}
	if !strings.Contains(output, "TUNER:") {
		t.Error("expected TUNER source in output")
	}
}

func TestStatsCountsByCategory(t *testing.T) {
	ts := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	events := []eventlog.Event{
		{Timestamp: ts, Category: eventlog.CategoryInput},
		{Timestamp: ts, Category: eventlog.CategoryAction},
		{Timestamp: ts, Category: eventlog.CategoryState},
		{Timestamp: ts, Category: eventlog.CategoryError,
			Error: &eventlog.ErrorEvent{Message: "test"}},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	for _, label := range []string{"INPUT:", "ACTION:", "STATE:", "ERROR:"} {
		if !strings.Contains(output, label) {
			t.Errorf("expected %s category in output", label)
		}
	}
}

func TestStatsTotalEvents(t *testing.T) {
	ts := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	events := []eventlog.Event{
		{Timestamp: ts, Category: eventlog.CategoryInput},
		{Timestamp: ts, Category: eventlog.CategoryInput},
		{Timestamp: ts, Category: eventlog.CategoryInput},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Total Events: 3") {
		t.Errorf("expected 3 total events in output, got:\n%s", buf.String())
	}
}

func TestStatsTimeRange(t *testing.T) {
	start := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 14, 21, 0, 0, 0, time.UTC)
	events := []eventlog.Event{
		{Timestamp: start, Category: eventlog.CategoryInput},
		{Timestamp: end, Category: eventlog.CategoryInput},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Duration:") {
		t.Error("expected Duration in output")
	}
	if !strings.Contains(output, "1h0m0s") {
		t.Errorf("expected 1h0m0s duration in output, got:\n%s", output)
	}
}

func TestStatsSessionBreakdown(t *testing.T) {
	ts := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	events := []eventlog.Event{
		// Session one: two signals (one debounced), a resolved dial, a
		// rejected tune, an egg fire, a player key.
		{Timestamp: ts, SessionID: "sess-aaaa-1111", Source: eventlog.SourceRouter,
			Category: eventlog.CategoryInput,
			Signal:   &eventlog.SignalEvent{Event: "MUTE", Match: eventlog.MatchMapped}},
		{Timestamp: ts.Add(time.Second), SessionID: "sess-aaaa-1111", Source: eventlog.SourceRouter,
			Category: eventlog.CategoryInput,
			Signal:   &eventlog.SignalEvent{Event: "MUTE", Match: eventlog.MatchMapped, Debounced: true}},
		{Timestamp: ts.Add(2 * time.Second), SessionID: "sess-aaaa-1111", Source: eventlog.SourceDialer,
			Category: eventlog.CategoryAction,
			Dial:     &eventlog.DialEvent{Buffer: "13", Outcome: eventlog.DialResolved, Channel: 13}},
		{Timestamp: ts.Add(3 * time.Second), SessionID: "sess-aaaa-1111", Source: eventlog.SourceTuner,
			Category: eventlog.CategoryAction,
			Tune:     &eventlog.TuneEvent{Command: "direct", From: 1, To: 55, Valid: false, Fallback: 1}},
		{Timestamp: ts.Add(4 * time.Second), SessionID: "sess-aaaa-1111", Source: eventlog.SourceEggs,
			Category: eventlog.CategoryAction,
			Egg:      &eventlog.EggEvent{Key: "911", Outcome: eventlog.EggFired}},
		{Timestamp: ts.Add(5 * time.Second), SessionID: "sess-aaaa-1111", Source: eventlog.SourcePlayer,
			Category: eventlog.CategoryAction,
			Player:   &eventlog.PlayerEvent{Key: "m", OK: true}},

		// Session two: a single event.
		{Timestamp: ts.Add(time.Hour), SessionID: "sess-bbbb-2222", Source: eventlog.SourceService,
			Category: eventlog.CategoryState,
			State:    &eventlog.StateEvent{Entity: eventlog.EntityService, NewState: "RUNNING"}},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Sessions: 2") {
		t.Errorf("expected 2 sessions in output, got:\n%s", output)
	}
	if !strings.Contains(output, "[sess-aaa") {
		t.Error("expected shortened session ID in output")
	}
	if !strings.Contains(output, "Signals: 2 (1 debounced)") {
		t.Errorf("expected signal breakdown, got:\n%s", output)
	}
	if !strings.Contains(output, "Dials: 1 resolved, 0 invalid") {
		t.Errorf("expected dial breakdown, got:\n%s", output)
	}
	if !strings.Contains(output, "Tunes: 0 valid, 1 rejected") {
		t.Errorf("expected tune breakdown, got:\n%s", output)
	}
	if !strings.Contains(output, "Eggs: 1 fired, 0 blocked") {
		t.Errorf("expected egg breakdown, got:\n%s", output)
	}
	if !strings.Contains(output, "Player keys: 1") {
		t.Errorf("expected player key count, got:\n%s", output)
	}
}

func TestStatsErrorCount(t *testing.T) {
	ts := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	events := []eventlog.Event{
		{Timestamp: ts, Category: eventlog.CategoryInput},
		{Timestamp: ts, Category: eventlog.CategoryError,
			Error: &eventlog.ErrorEvent{Message: "error 1"}},
		{Timestamp: ts, Category: eventlog.CategoryError,
			Error: &eventlog.ErrorEvent{Message: "error 2"}},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Errors: 2") {
		t.Errorf("expected 2 errors in output, got:\n%s", buf.String())
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events in output, got:\n%s", buf.String())
	}
}
