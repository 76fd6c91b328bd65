package station

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Publisher delivers commands to the station runtime.
// Delivery is best-effort: implementations log failures and never return
// them into the mapping pipeline.
type Publisher interface {
	Publish(cmd Command)
}

// FilePublisher writes each command as a single JSON document to a fixed
// path, replacing the previous one. The station runtime watches the file
// and only ever cares about the latest command.
type FilePublisher struct {
	mu   sync.Mutex
	path string

	// Logger for debug output (optional)
	logger *slog.Logger
}

// NewFilePublisher creates a FilePublisher writing to path.
func NewFilePublisher(path string) *FilePublisher {
	return &FilePublisher{path: path}
}

// SetLogger configures debug logging. Pass nil to disable.
func (p *FilePublisher) SetLogger(logger *slog.Logger) {
	p.logger = logger
}

// Publish writes the command, stamping it if the caller left the
// timestamp zero.
func (p *FilePublisher) Publish(cmd Command) {
	data, err := json.Marshal(cmd.stamped())
	if err != nil {
		p.debugLog("publish encode failed", "command", cmd.Name, "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.WriteFile(p.path, data, 0644); err != nil {
		p.debugLog("publish write failed", "command", cmd.Name, "error", err)
		return
	}
	p.debugLog("published", "command", cmd.Name, "payload", string(data))
}

// debugLog logs a debug message if logging is enabled.
func (p *FilePublisher) debugLog(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

// Console prints published commands as JSON lines, for the simulator.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a Console publisher writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Publish(cmd Command) {
	data, err := json.Marshal(cmd.stamped())
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[station] %s\n", data)
}

// Noop discards all commands. Used when no station runtime is attached.
type Noop struct{}

func (Noop) Publish(Command) {}

// Compile-time interface satisfaction checks.
var (
	_ Publisher = (*FilePublisher)(nil)
	_ Publisher = (*Console)(nil)
	_ Publisher = Noop{}
)
