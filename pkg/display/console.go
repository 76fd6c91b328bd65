package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console renders panel traffic as text lines, for running without the
// segment hardware (simulator, headless daemon).
type Console struct {
	w  io.Writer
	mu sync.Mutex
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) print(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) ShowDigits(seq string) {
	if len(seq) > MaxTextLen {
		seq = seq[:MaxTextLen]
	}
	c.print("[panel] %s", seq)
}

func (c *Console) ShowCode(text string) {
	if len(text) > MaxTextLen {
		text = text[:MaxTextLen]
	}
	c.print("[panel] %s", strings.ToUpper(text))
}

func (c *Console) ShowChannel(channel int) {
	c.print("[panel] %d", channel)
}

func (c *Console) SetBrightness(level int) {
	c.print("[panel] brightness %d", level)
}

func (c *Console) On()    { c.print("[panel] on") }
func (c *Console) Off()   { c.print("[panel] off") }
func (c *Console) Clear() { c.print("[panel] clear") }

func (c *Console) SetLight(effect string) {
	c.print("[light] %s", effect)
}

func (c *Console) Command(cmd string) {
	c.print("[panel] raw %q", cmd)
}

// Compile-time interface satisfaction check.
var _ Panel = (*Console)(nil)
