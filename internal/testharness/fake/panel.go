// Package fake provides recording doubles for pipeline collaborators.
package fake

import (
	"strconv"
	"strings"
	"sync"

	"github.com/tunedial/tunedial-go/pkg/display"
)

// Panel records every front-panel call as "verb:argument" strings, in
// call order.
type Panel struct {
	mu  sync.Mutex
	ops []string
}

// NewPanel creates an empty recording panel.
func NewPanel() *Panel {
	return &Panel{}
}

func (p *Panel) record(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = append(p.ops, op)
}

func (p *Panel) ShowDigits(seq string)   { p.record("digits:" + seq) }
func (p *Panel) ShowCode(text string)    { p.record("code:" + text) }
func (p *Panel) ShowChannel(channel int) { p.record("channel:" + strconv.Itoa(channel)) }
func (p *Panel) SetBrightness(level int) { p.record("brightness:" + strconv.Itoa(level)) }
func (p *Panel) On()                     { p.record("on") }
func (p *Panel) Off()                    { p.record("off") }
func (p *Panel) Clear()                  { p.record("clear") }
func (p *Panel) SetLight(effect string)  { p.record("light:" + effect) }
func (p *Panel) Command(cmd string)      { p.record("cmd:" + cmd) }

// Ops returns the recorded calls in order.
func (p *Panel) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.ops))
	copy(out, p.ops)
	return out
}

// Last returns the most recent call, or "" when nothing was recorded.
func (p *Panel) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ops) == 0 {
		return ""
	}
	return p.ops[len(p.ops)-1]
}

// WithPrefix returns the recorded calls whose verb matches, in order.
func (p *Panel) WithPrefix(prefix string) []string {
	var out []string
	for _, op := range p.Ops() {
		if strings.HasPrefix(op, prefix) {
			out = append(out, op)
		}
	}
	return out
}

// Reset discards the recording.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = nil
}

// Compile-time interface satisfaction check.
var _ display.Panel = (*Panel)(nil)
