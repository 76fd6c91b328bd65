package flipper

import (
	"regexp"
	"strings"
)

// Signal is one decoded IR signal as reported by the Flipper CLI, e.g.
//
//	NEC, A:0x32, C:0x11
type Signal struct {
	// Protocol is the IR protocol name (NEC, Samsung32, SIRC, ...).
	Protocol string

	// Address and Command are hex strings exactly as printed by the CLI,
	// including the 0x prefix.
	Address string
	Command string

	// Raw is the full line the signal was parsed from.
	Raw string
}

// signalPattern matches the protocol/address/command triple at the start of
// an `ir rx` output line.
var signalPattern = regexp.MustCompile(`^(\w+), A:(0x[0-9A-Fa-f]+), C:(0x[0-9A-Fa-f]+)`)

// noisePrefixes are CLI chatter printed around reception. Lines starting
// with any of these never carry a signal.
var noisePrefixes = []string{
	"ir rx",
	"Receiving",
	"Press Ctrl+C",
	"Ready to receive",
	"Press CTRL+C to exit",
}

// ParseSignal parses one line of `ir rx` output. The second return value is
// false for empty lines, CLI chatter and anything else without a
// protocol/address/command triple.
func ParseSignal(line string) (Signal, bool) {
	if line == "" {
		return Signal{}, false
	}

	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(line, prefix) {
			return Signal{}, false
		}
	}

	m := signalPattern.FindStringSubmatch(line)
	if m == nil {
		return Signal{}, false
	}

	return Signal{
		Protocol: m[1],
		Address:  m[2],
		Command:  m[3],
		Raw:      line,
	}, true
}
