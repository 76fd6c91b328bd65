// Package display drives the 4-character 7-segment front panel and its
// attached light strip.
package display

// Feedback codes shown by the mapping pipeline. All fit the 4-character panel.
const (
	// CodeReject indicates a dialed channel that is not in the lineup.
	CodeReject = "NOPE"

	// CodeError indicates a dial sequence that could not be parsed.
	CodeError = "ERR"

	// CodeUp and CodeDown are the brief transition indicators for
	// channel stepping.
	CodeUp   = "UP"
	CodeDown = "Dn"
)

// MaxTextLen is the character capacity of the panel.
const MaxTextLen = 4

// Sink receives feedback from the mapping pipeline.
// Calls are fire-and-forget: implementations must swallow device failures
// rather than propagate them into the pipeline.
type Sink interface {
	// ShowDigits echoes an in-progress dial sequence.
	// Leading zeros are preserved.
	ShowDigits(seq string)

	// ShowCode shows a short feedback code or egg label.
	// Text is uppercased and truncated to the panel width.
	ShowCode(text string)

	// ShowChannel shows a channel number.
	ShowChannel(channel int)
}

// Panel is a complete front-panel device: the pipeline Sink plus the
// housekeeping commands of the segment hardware.
type Panel interface {
	Sink

	// SetBrightness sets panel brightness. Level is clamped to 0..7.
	SetBrightness(level int)

	// On and Off control the panel power state without clearing content.
	On()
	Off()

	// Clear blanks the panel.
	Clear()

	// SetLight drives the attached light strip, e.g. "red-blue 10" or "off".
	SetLight(effect string)

	// Command sends a raw command line to the device.
	Command(cmd string)
}
