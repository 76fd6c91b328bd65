package display

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// SegmentDisplay drives the 7-segment panel over a serial line.
// Commands are ASCII lines terminated with CRLF:
//
//	DISP:<text>   show up to 4 characters
//	DISP:BRT:<n>  set brightness 0-7
//	DISP:ON       panel on
//	DISP:OFF      panel off
//	DISP:CLR      blank the panel
//	LED:<effect>  drive the attached light strip
//
// After the first write failure the device is marked dead and all further
// commands become no-ops, so a yanked cable cannot stall the pipeline.
type SegmentDisplay struct {
	w    io.WriteCloser
	mu   sync.Mutex
	dead bool

	// Logger for debug output (optional)
	logger *slog.Logger
}

// NewSegmentDisplay creates a SegmentDisplay writing to w.
func NewSegmentDisplay(w io.WriteCloser) *SegmentDisplay {
	return &SegmentDisplay{w: w}
}

// SetLogger configures debug logging. Pass nil to disable.
func (d *SegmentDisplay) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

// send writes one command line. Write failures mark the device dead.
func (d *SegmentDisplay) send(cmd string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dead {
		return
	}

	if _, err := io.WriteString(d.w, cmd+"\r\n"); err != nil {
		d.dead = true
		d.debugLog("display write failed, disabling device", "cmd", cmd, "error", err)
		return
	}
	d.debugLog("display", "cmd", cmd)
}

// ShowDigits echoes a dial sequence. Leading zeros are preserved; only the
// first 4 characters fit the panel.
func (d *SegmentDisplay) ShowDigits(seq string) {
	if len(seq) > MaxTextLen {
		seq = seq[:MaxTextLen]
	}
	d.send("DISP:" + seq)
}

// ShowCode shows a feedback code, uppercased and truncated to the panel width.
func (d *SegmentDisplay) ShowCode(text string) {
	if len(text) > MaxTextLen {
		text = text[:MaxTextLen]
	}
	d.send("DISP:" + strings.ToUpper(text))
}

// ShowChannel shows a channel number.
func (d *SegmentDisplay) ShowChannel(channel int) {
	s := strconv.Itoa(channel)
	if len(s) > MaxTextLen {
		s = s[:MaxTextLen]
	}
	d.send("DISP:" + s)
}

// SetBrightness sets panel brightness, clamping level to 0..7.
func (d *SegmentDisplay) SetBrightness(level int) {
	if level < 0 {
		level = 0
	}
	if level > 7 {
		level = 7
	}
	d.send(fmt.Sprintf("DISP:BRT:%d", level))
}

// On turns the panel on.
func (d *SegmentDisplay) On() {
	d.send("DISP:ON")
}

// Off turns the panel off.
func (d *SegmentDisplay) Off() {
	d.send("DISP:OFF")
}

// Clear blanks the panel.
func (d *SegmentDisplay) Clear() {
	d.send("DISP:CLR")
}

// SetLight drives the light strip.
func (d *SegmentDisplay) SetLight(effect string) {
	d.send("LED:" + effect)
}

// Command sends a raw command line.
func (d *SegmentDisplay) Command(cmd string) {
	d.send(cmd)
}

// Close closes the underlying writer.
func (d *SegmentDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dead = true
	return d.w.Close()
}

// debugLog logs a debug message if logging is enabled.
func (d *SegmentDisplay) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

// Compile-time interface satisfaction check.
var _ Panel = (*SegmentDisplay)(nil)
