package remote

import (
	"strconv"
	"strings"
)

// Event is the token a decoded IR signal resolves to. Mapped signals
// resolve to one of the named constants below; signals the keymap
// cannot place resolve to a synthetic UNMAPPED_* or UNKNOWN_* token
// that preserves the raw codes for diagnostics.
type Event string

// Digit events feed the channel dialer.
const (
	EventDigit0 Event = "DIGIT_0"
	EventDigit1 Event = "DIGIT_1"
	EventDigit2 Event = "DIGIT_2"
	EventDigit3 Event = "DIGIT_3"
	EventDigit4 Event = "DIGIT_4"
	EventDigit5 Event = "DIGIT_5"
	EventDigit6 Event = "DIGIT_6"
	EventDigit7 Event = "DIGIT_7"
	EventDigit8 Event = "DIGIT_8"
	EventDigit9 Event = "DIGIT_9"
)

// Navigation and playback events.
const (
	EventChannelUp   Event = "CHANNEL_UP"
	EventChannelDown Event = "CHANNEL_DOWN"
	EventEffectNext  Event = "EFFECT_NEXT"
	EventEffectPrev  Event = "EFFECT_PREV"
	EventVolumeUp    Event = "VOLUME_UP"
	EventVolumeDown  Event = "VOLUME_DOWN"
	EventMute        Event = "MUTE"
	EventPower       Event = "POWER"
	EventPause       Event = "PAUSE"
	EventInfo        Event = "INFO"
	EventMenu        Event = "MENU"
	EventOK          Event = "OK"
	EventBack        Event = "BACK"

	// EventDigitalAnalog toggles the retro picture effect. It doubles
	// as a registered special-action key, so the router hands it to the
	// dialer's trigger path rather than the player directly.
	EventDigitalAnalog Event = "DIGITAL_ANALOG"
)

// Synthetic token prefixes for signals the keymap cannot place.
const (
	// unmappedPrefix marks a known remote with an unlisted command:
	// UNMAPPED_<remote>_<command>.
	unmappedPrefix = "UNMAPPED_"

	// unknownPrefix marks a protocol/address pair no remote claims:
	// UNKNOWN_<protocol>_<address>_<command>.
	unknownPrefix = "UNKNOWN_"
)

// DigitEvent returns the event for a single digit 0-9.
func DigitEvent(d int) Event {
	return Event("DIGIT_" + strconv.Itoa(d))
}

// Digit extracts the digit value from a DIGIT_n event.
// The second return is false for any other event.
func (e Event) Digit() (int, bool) {
	s := string(e)
	if !strings.HasPrefix(s, "DIGIT_") {
		return 0, false
	}
	d, err := strconv.Atoi(s[len("DIGIT_"):])
	if err != nil || d < 0 || d > 9 {
		return 0, false
	}
	return d, true
}

// IsDigit returns true for DIGIT_0 through DIGIT_9.
func (e Event) IsDigit() bool {
	_, ok := e.Digit()
	return ok
}

// IsUnmapped returns true for synthetic UNMAPPED_* tokens.
func (e Event) IsUnmapped() bool {
	return strings.HasPrefix(string(e), unmappedPrefix)
}

// IsUnknown returns true for synthetic UNKNOWN_* tokens.
func (e Event) IsUnknown() bool {
	return strings.HasPrefix(string(e), unknownPrefix)
}

// IsMapped returns true when the event resolved to a named token
// rather than a synthetic UNMAPPED_*/UNKNOWN_* form.
func (e Event) IsMapped() bool {
	return !e.IsUnmapped() && !e.IsUnknown()
}

// String returns the event token.
func (e Event) String() string {
	return string(e)
}
