package eventlog

import "time"

// WithSession wraps a logger so every event carries the given session
// ID and a capture timestamp. Events that already set either field
// keep their own value.
func WithSession(sessionID string, logger Logger) Logger {
	return &sessionLogger{id: sessionID, logger: logger}
}

type sessionLogger struct {
	id     string
	logger Logger
}

// Log stamps the session ID and timestamp, then forwards the event.
func (s *sessionLogger) Log(event Event) {
	if event.SessionID == "" {
		event.SessionID = s.id
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.logger.Log(event)
}

// Compile-time interface satisfaction check.
var _ Logger = (*sessionLogger)(nil)
