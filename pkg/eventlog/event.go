package eventlog

import (
	"time"
)

// Event represents a captured mapper event at any stage of the pipeline.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the daemon run that captured the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Source is the pipeline stage that captured the event.
	Source Source `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Channel is the current channel at capture time, when known.
	Channel int `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Signal *SignalEvent `cbor:"10,keyasint,omitempty"` // Received IR signal
	Dial   *DialEvent   `cbor:"11,keyasint,omitempty"` // Digit buffer activity
	Tune   *TuneEvent   `cbor:"12,keyasint,omitempty"` // Channel change attempt
	Egg    *EggEvent    `cbor:"13,keyasint,omitempty"` // Special action lifecycle
	Player *PlayerEvent `cbor:"14,keyasint,omitempty"` // Media-player key injection
	State  *StateEvent  `cbor:"15,keyasint,omitempty"` // Service/effect state change
	Error  *ErrorEvent  `cbor:"16,keyasint,omitempty"` // Errors at any stage
}

// Source identifies the pipeline stage that captured an event.
type Source uint8

const (
	// SourceReceiver is the serial IR signal receiver.
	SourceReceiver Source = 0
	// SourceRouter is the event routing layer.
	SourceRouter Source = 1
	// SourceDialer is the digit sequence resolver.
	SourceDialer Source = 2
	// SourceTuner is the channel registry.
	SourceTuner Source = 3
	// SourceEggs is the special-action registry.
	SourceEggs Source = 4
	// SourcePlayer is the media-player actuator.
	SourcePlayer Source = 5
	// SourceService is the composition/lifecycle layer.
	SourceService Source = 6
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceReceiver:
		return "RECEIVER"
	case SourceRouter:
		return "ROUTER"
	case SourceDialer:
		return "DIALER"
	case SourceTuner:
		return "TUNER"
	case SourceEggs:
		return "EGGS"
	case SourcePlayer:
		return "PLAYER"
	case SourceService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryInput indicates an incoming signal or routed token.
	CategoryInput Category = 0
	// CategoryAction indicates an outgoing action (tune, egg, key press).
	CategoryAction Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryInput:
		return "INPUT"
	case CategoryAction:
		return "ACTION"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SignalEvent captures a decoded IR signal and its keymap resolution.
type SignalEvent struct {
	// Protocol is the IR protocol name (e.g. "NEC", "Samsung32", "SIRC").
	Protocol string `cbor:"1,keyasint"`

	// Address is the IR address code as received (e.g. "0x32").
	Address string `cbor:"2,keyasint"`

	// Command is the IR command code as received (e.g. "0x11").
	Command string `cbor:"3,keyasint"`

	// Event is the resolved event token (mapped name or synthetic
	// UNMAPPED_*/UNKNOWN_* form).
	Event string `cbor:"4,keyasint"`

	// Match indicates how the keymap resolved the signal.
	Match MatchKind `cbor:"5,keyasint"`

	// Debounced is true when the repeat filter dropped the event.
	Debounced bool `cbor:"6,keyasint,omitempty"`
}

// MatchKind indicates how a signal resolved against the keymap.
type MatchKind uint8

const (
	// MatchMapped - the remote and command are both known.
	MatchMapped MatchKind = 0
	// MatchUnmapped - the remote is known but the command is not.
	MatchUnmapped MatchKind = 1
	// MatchUnknown - no remote matches the protocol/address pair.
	MatchUnknown MatchKind = 2
)

// String returns the match kind name.
func (m MatchKind) String() string {
	switch m {
	case MatchMapped:
		return "MAPPED"
	case MatchUnmapped:
		return "UNMAPPED"
	case MatchUnknown:
		return "UNKNOWN"
	default:
		return "INVALID"
	}
}

// DialEvent captures digit-buffer activity in the dialer.
type DialEvent struct {
	// Buffer is the digit buffer content at capture time.
	Buffer string `cbor:"1,keyasint"`

	// Outcome describes what happened to the buffer.
	Outcome DialOutcome `cbor:"2,keyasint"`

	// Channel is the resolved channel number (resolved outcome only).
	Channel int `cbor:"3,keyasint,omitempty"`
}

// DialOutcome describes a dialer buffer transition.
type DialOutcome uint8

const (
	// DialDigit - a digit was appended, buffer still accumulating.
	DialDigit DialOutcome = 0
	// DialMatched - the buffer matched a special key and was consumed.
	DialMatched DialOutcome = 1
	// DialResolved - the quiet period elapsed and the buffer resolved
	// to a channel number.
	DialResolved DialOutcome = 2
	// DialCleared - the buffer was explicitly cleared.
	DialCleared DialOutcome = 3
	// DialInvalid - the buffer could not be parsed as a channel.
	DialInvalid DialOutcome = 4
)

// String returns the outcome name.
func (o DialOutcome) String() string {
	switch o {
	case DialDigit:
		return "DIGIT"
	case DialMatched:
		return "MATCHED"
	case DialResolved:
		return "RESOLVED"
	case DialCleared:
		return "CLEARED"
	case DialInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// TuneEvent captures a channel change attempt.
type TuneEvent struct {
	// Command is the published command form: "direct", "up", or "down".
	Command string `cbor:"1,keyasint"`

	// From is the channel before the attempt.
	From int `cbor:"2,keyasint"`

	// To is the requested channel.
	To int `cbor:"3,keyasint"`

	// Valid reports whether the requested channel is a member of the
	// configured channel list.
	Valid bool `cbor:"4,keyasint"`

	// Fallback is the channel the display reverted to (invalid only).
	Fallback int `cbor:"5,keyasint,omitempty"`
}

// EggEvent captures the lifecycle of a special action.
type EggEvent struct {
	// Key is the trigger token.
	Key string `cbor:"1,keyasint"`

	// Outcome describes the trigger result.
	Outcome EggOutcome `cbor:"2,keyasint"`

	// Remaining is the cooldown left when the trigger was blocked.
	Remaining time.Duration `cbor:"3,keyasint,omitempty"`

	// Effect is the scheduled effect duration when the trigger fired.
	Effect time.Duration `cbor:"4,keyasint,omitempty"`
}

// EggOutcome describes a special-action trigger result.
type EggOutcome uint8

const (
	// EggFired - the action ran and the cooldown was consumed.
	EggFired EggOutcome = 0
	// EggBlocked - the per-key cooldown had not elapsed.
	EggBlocked EggOutcome = 1
	// EggExpired - a timed effect reached its scheduled cleanup.
	EggExpired EggOutcome = 2
	// EggUnknown - the trigger token is not registered.
	EggUnknown EggOutcome = 3
)

// String returns the outcome name.
func (o EggOutcome) String() string {
	switch o {
	case EggFired:
		return "FIRED"
	case EggBlocked:
		return "BLOCKED"
	case EggExpired:
		return "EXPIRED"
	case EggUnknown:
		return "UNKNOWN"
	default:
		return "INVALID"
	}
}

// PlayerEvent captures a key injected into the media player.
type PlayerEvent struct {
	// Key is the key name sent to the player window.
	Key string `cbor:"1,keyasint"`

	// OK reports whether the injection succeeded.
	OK bool `cbor:"2,keyasint"`
}

// StateEvent captures service and effect state changes.
type StateEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// EntityService indicates a service lifecycle change.
	EntityService StateEntity = 0
	// EntityDialer indicates a dialer state-machine change.
	EntityDialer StateEntity = 1
	// EntityEffect indicates a timed effect starting or ending.
	EntityEffect StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case EntityService:
		return "SERVICE"
	case EntityDialer:
		return "DIALER"
	case EntityEffect:
		return "EFFECT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEvent captures errors at any stage.
type ErrorEvent struct {
	// Source where the error occurred.
	Source Source `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
