// Package eventlog provides structured event capture for tunedial.
//
// This package defines the Logger interface and Event types for recording
// the mapper pipeline (received signals, dialer activity, tunes, special
// actions, player keys). It is separate from operational logging (slog) -
// event capture provides a complete machine-readable trace for debugging
// and analysis.
//
// # Basic Usage
//
// The daemon assembles its capture chain from configuration: setting
// EventLogPath adds a FileLogger, setting a debug Logger adds a
// SlogAdapter, and both together are combined with a MultiLogger. Code
// embedding the pipeline directly builds the same chain by hand:
//
//	fileLog, _ := eventlog.NewFileLogger("/var/lib/tunedial/run.tdlog")
//	sink := eventlog.NewMultiLogger(
//	    eventlog.NewSlogAdapter(slog.Default()),
//	    fileLog,
//	)
//	logger := eventlog.WithSession(sessionID, sink)
//
// # Event Types
//
// Events carry one payload each:
//   - Signal: decoded IR signal and its keymap resolution
//   - Dial: digit buffer transitions (append, match, resolve, clear)
//   - Tune: channel change attempts with validity
//   - Egg: special-action lifecycle (fired, blocked, expired)
//   - Player: media-player key injections
//   - State: service and effect state changes
//
// Errors at any stage use the dedicated ErrorEvent payload.
//
// # File Format
//
// Log files use CBOR encoding with .tdlog extension. The tunedial-log CLI
// tool provides viewing, filtering, and export capabilities.
package eventlog
