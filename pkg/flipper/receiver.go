// Package flipper drives a Flipper Zero's CLI over serial and turns its
// `ir rx` output into decoded signal callbacks.
package flipper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Receiver errors.
var (
	// ErrAlreadyReceiving indicates Start was called twice.
	ErrAlreadyReceiving = errors.New("already receiving")
)

// interrupt is the CTRL+C byte that aborts whatever the CLI is doing.
const interrupt = 0x03

// receiveCommand puts the CLI into IR receive mode.
const receiveCommand = "ir rx\r\n"

// ReceiverConfig configures a Receiver.
type ReceiverConfig struct {
	// InterruptPause is how long to wait after sending the interrupt byte
	// before issuing the receive command, giving the CLI time to settle.
	InterruptPause time.Duration
}

// DefaultReceiverConfig returns the default receiver configuration.
func DefaultReceiverConfig() ReceiverConfig {
	return ReceiverConfig{
		InterruptPause: time.Second,
	}
}

// Receiver owns the serial session with the Flipper. Start puts the CLI
// into receive mode and spawns a read loop that parses each line and
// invokes the signal callback.
type Receiver struct {
	config ReceiverConfig
	port   io.ReadWriteCloser

	mu       sync.Mutex
	running  bool
	onSignal func(Signal)
	onError  func(error)
	cancel   context.CancelFunc
	done     chan struct{}

	// Logger for debug output (optional)
	logger *slog.Logger
}

// NewReceiver creates a Receiver with default configuration.
func NewReceiver(port io.ReadWriteCloser) *Receiver {
	return NewReceiverWithConfig(port, DefaultReceiverConfig())
}

// NewReceiverWithConfig creates a Receiver with the given configuration.
func NewReceiverWithConfig(port io.ReadWriteCloser, config ReceiverConfig) *Receiver {
	if config.InterruptPause == 0 {
		config.InterruptPause = time.Second
	}
	return &Receiver{
		config: config,
		port:   port,
	}
}

// SetLogger configures debug logging. Pass nil to disable.
func (r *Receiver) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// OnSignal registers the callback invoked for every parsed signal.
// The callback runs on the read-loop goroutine.
func (r *Receiver) OnSignal(fn func(Signal)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSignal = fn
}

// OnError registers the callback invoked once if the read loop dies on a
// port error. Not invoked for a clean Stop.
func (r *Receiver) OnError(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = fn
}

// Start interrupts the CLI, enters receive mode and spawns the read loop.
func (r *Receiver) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyReceiving
	}
	r.running = true
	r.mu.Unlock()

	// Abort whatever the CLI is doing so the receive command lands on a
	// fresh prompt. Any chatter this produces is dropped by the parser.
	if _, err := r.port.Write([]byte{interrupt}); err != nil {
		r.setStopped()
		return fmt.Errorf("failed to interrupt CLI: %w", err)
	}

	select {
	case <-time.After(r.config.InterruptPause):
	case <-ctx.Done():
		r.setStopped()
		return ctx.Err()
	}

	if _, err := io.WriteString(r.port, receiveCommand); err != nil {
		r.setStopped()
		return fmt.Errorf("failed to enter receive mode: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.readLoop(loopCtx)

	r.debugLog("receiver started")
	return nil
}

// Stop interrupts the CLI, closes the port and waits for the read loop to
// exit. Safe to call when not running.
func (r *Receiver) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// Best effort: leave the CLI at a prompt instead of in receive mode.
	r.port.Write([]byte{interrupt})

	err := r.port.Close()
	if done != nil {
		<-done
	}

	r.debugLog("receiver stopped")
	return err
}

// readLoop parses lines until the port dies or the context is cancelled.
func (r *Receiver) readLoop(ctx context.Context) {
	defer close(r.done)

	scanner := bufio.NewScanner(r.port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		r.debugLog("flipper line", "raw", line)

		signal, ok := ParseSignal(line)
		if !ok {
			continue
		}

		r.mu.Lock()
		fn := r.onSignal
		r.mu.Unlock()
		if fn != nil {
			fn(signal)
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		r.mu.Lock()
		stillRunning := r.running
		fn := r.onError
		r.mu.Unlock()

		// Only surface failures while we were supposed to be receiving.
		if stillRunning && fn != nil {
			fn(fmt.Errorf("flipper read failed: %w", err))
		}
	}
}

func (r *Receiver) setStopped() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// debugLog logs a debug message if logging is enabled.
func (r *Receiver) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
