package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tunedial/tunedial-go/pkg/eventlog"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsBySource   map[eventlog.Source]int
	EventsByCategory map[eventlog.Category]int
	Sessions         map[string]*SessionStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single daemon run.
type SessionStats struct {
	FirstSeen     time.Time
	LastSeen      time.Time
	Events        int
	Signals       int
	Debounced     int
	DialsResolved int
	DialsInvalid  int
	TunesValid    int
	TunesRejected int
	EggsFired     int
	EggsBlocked   int
	PlayerKeys    int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := eventlog.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsBySource:   make(map[eventlog.Source]int),
		EventsByCategory: make(map[eventlog.Category]int),
		Sessions:         make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsBySource[event.Source]++
		stats.EventsByCategory[event.Category]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track session stats
		sess, ok := stats.Sessions[event.SessionID]
		if !ok {
			sess = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Sessions[event.SessionID] = sess
		}
		sess.Events++
		if event.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = event.Timestamp
		}

		switch {
		case event.Signal != nil:
			sess.Signals++
			if event.Signal.Debounced {
				sess.Debounced++
			}
		case event.Dial != nil:
			switch event.Dial.Outcome {
			case eventlog.DialResolved:
				sess.DialsResolved++
			case eventlog.DialInvalid:
				sess.DialsInvalid++
			}
		case event.Tune != nil:
			if event.Tune.Valid {
				sess.TunesValid++
			} else {
				sess.TunesRejected++
			}
		case event.Egg != nil:
			switch event.Egg.Outcome {
			case eventlog.EggFired:
				sess.EggsFired++
			case eventlog.EggBlocked:
				sess.EggsBlocked++
			}
		case event.Player != nil:
			sess.PlayerKeys++
		}

		// Count errors
		if event.Error != nil {
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== TuneDial Event Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by source
	fmt.Fprintln(w, "Events by Source:")
	for _, source := range []eventlog.Source{
		eventlog.SourceReceiver, eventlog.SourceRouter, eventlog.SourceDialer,
		eventlog.SourceTuner, eventlog.SourceEggs, eventlog.SourcePlayer,
		eventlog.SourceService,
	} {
		if count := stats.EventsBySource[source]; count > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", source.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by category
	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []eventlog.Category{
		eventlog.CategoryInput, eventlog.CategoryAction,
		eventlog.CategoryState, eventlog.CategoryError,
	} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Sessions
	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		// Sort by first seen time
		type sessInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Second)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenSessionID(s.id), s.stats.Events, duration)
			if s.stats.Signals > 0 {
				fmt.Fprintf(w, "           Signals: %d (%d debounced)\n", s.stats.Signals, s.stats.Debounced)
			}
			if s.stats.DialsResolved > 0 || s.stats.DialsInvalid > 0 {
				fmt.Fprintf(w, "           Dials: %d resolved, %d invalid\n", s.stats.DialsResolved, s.stats.DialsInvalid)
			}
			if s.stats.TunesValid > 0 || s.stats.TunesRejected > 0 {
				fmt.Fprintf(w, "           Tunes: %d valid, %d rejected\n", s.stats.TunesValid, s.stats.TunesRejected)
			}
			if s.stats.EggsFired > 0 || s.stats.EggsBlocked > 0 {
				fmt.Fprintf(w, "           Eggs: %d fired, %d blocked\n", s.stats.EggsFired, s.stats.EggsBlocked)
			}
			if s.stats.PlayerKeys > 0 {
				fmt.Fprintf(w, "           Player keys: %d\n", s.stats.PlayerKeys)
			}
		}
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
