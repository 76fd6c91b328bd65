// Package remote maps decoded IR signals to named events.
//
// A Keymap holds an ordered set of Remote tables (protocol + address +
// command-to-event mappings). Four tables ship built in; additional
// remotes load from YAML keymap files. Signals no table can place
// resolve to synthetic UNMAPPED_*/UNKNOWN_* tokens that keep the raw
// codes visible, which is how new remotes get catalogued in the first
// place.
package remote

import "fmt"

// Remote describes one physical remote control: the IR protocol and
// address it transmits with, plus its command-to-event table. Command
// codes are the literal hex strings the receiver reports (e.g. "0x11").
type Remote struct {
	// Name identifies the remote in synthetic UNMAPPED_* tokens and
	// in keymap files.
	Name string

	// Protocol is the IR protocol name as reported (e.g. "NEC",
	// "Samsung32", "SIRC").
	Protocol string

	// Address is the IR address code as reported (e.g. "0x32").
	Address string

	// Mappings resolves command codes to events.
	Mappings map[string]Event
}

// Keymap resolves decoded IR signals to events across an ordered set
// of remotes. The first remote whose protocol and address match claims
// the signal; a claimed signal with an unlisted command does not fall
// through to later remotes.
//
// A Keymap is built once during setup and read-only afterwards, so
// lookups need no locking.
type Keymap struct {
	remotes []Remote
}

// NewKeymap returns a keymap over the given remotes, in order.
func NewKeymap(remotes ...Remote) *Keymap {
	return &Keymap{remotes: remotes}
}

// Add appends a remote to the lookup order. Call only during setup,
// before the signal source starts.
func (k *Keymap) Add(r Remote) {
	k.remotes = append(k.remotes, r)
}

// Remotes returns the remotes in lookup order.
func (k *Keymap) Remotes() []Remote {
	out := make([]Remote, len(k.remotes))
	copy(out, k.remotes)
	return out
}

// Map resolves a protocol/address/command triple to an event.
//
// Matching is exact string comparison against the configured tables,
// so table entries must use the same hex casing the receiver emits.
// Unresolvable signals yield a synthetic token instead of an error:
// UNMAPPED_<remote>_<command> when a remote claims the address but
// not the command, UNKNOWN_<protocol>_<address>_<command> when no
// remote claims the address at all.
func (k *Keymap) Map(protocol, address, command string) Event {
	for _, r := range k.remotes {
		if r.Protocol != protocol || r.Address != address {
			continue
		}
		if event, ok := r.Mappings[command]; ok {
			return event
		}
		return Event(fmt.Sprintf("%s%s_%s", unmappedPrefix, r.Name, command))
	}
	return Event(fmt.Sprintf("%s%s_%s_%s", unknownPrefix, protocol, address, command))
}

// DefaultKeymaps returns the built-in remote tables.
func DefaultKeymaps() *Keymap {
	return NewKeymap(
		Remote{
			Name:     "nec_0x32",
			Protocol: "NEC",
			Address:  "0x32",
			Mappings: map[string]Event{
				"0x11": EventChannelUp,
				"0x14": EventChannelDown,
				"0x10": EventEffectPrev,
				"0x12": EventEffectNext,
				"0x00": EventDigit0,
				"0x01": EventDigit1,
				"0x02": EventDigit2,
				"0x03": EventDigit3,
				"0x04": EventDigit4,
				"0x05": EventDigit5,
				"0x06": EventDigit6,
				"0x07": EventDigit7,
				"0x08": EventDigit8,
				"0x09": EventDigit9,
			},
		},
		Remote{
			Name:     "samsung_tv",
			Protocol: "Samsung32",
			Address:  "0x07",
			Mappings: map[string]Event{
				"0x12": EventChannelUp,
				"0x10": EventChannelDown,
				"0x04": EventDigit1,
				"0x05": EventDigit2,
				"0x06": EventDigit3,
				"0x08": EventDigit4,
				"0x09": EventDigit5,
				"0x0A": EventDigit6,
				"0x0C": EventDigit7,
				"0x0D": EventDigit8,
				"0x0E": EventDigit9,
				"0x11": EventDigit0,
			},
		},
		Remote{
			Name:     "sony",
			Protocol: "SIRC",
			Address:  "0x01",
			Mappings: map[string]Event{
				"0x10": EventChannelUp,
				"0x11": EventChannelDown,
				"0x33": EventEffectNext,
				"0x34": EventEffectPrev,
				"0x00": EventDigit1,
				"0x01": EventDigit2,
				"0x02": EventDigit3,
				"0x03": EventDigit4,
				"0x04": EventDigit5,
				"0x05": EventDigit6,
				"0x06": EventDigit7,
				"0x07": EventDigit8,
				"0x08": EventDigit9,
				"0x09": EventDigit0,
			},
		},
		Remote{
			Name:     "sony_0x77",
			Protocol: "SIRC",
			Address:  "0x77",
			Mappings: map[string]Event{
				"0x0D": EventDigitalAnalog,
			},
		},
	)
}
