package fake

import (
	"sync"

	"github.com/tunedial/tunedial-go/pkg/station"
)

// Publisher records every command handed to Publish.
type Publisher struct {
	mu       sync.Mutex
	commands []station.Command
}

// NewPublisher creates an empty recording publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(cmd station.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = append(p.commands, cmd)
}

// Commands returns the recorded commands in order.
func (p *Publisher) Commands() []station.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]station.Command, len(p.commands))
	copy(out, p.commands)
	return out
}

// Last returns the most recent command, or a zero Command when nothing
// was published.
func (p *Publisher) Last() station.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.commands) == 0 {
		return station.Command{}
	}
	return p.commands[len(p.commands)-1]
}

// Reset discards the recording.
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = nil
}

// Compile-time interface satisfaction check.
var _ station.Publisher = (*Publisher)(nil)
