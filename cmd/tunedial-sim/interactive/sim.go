// Package interactive provides the interactive console for the
// TuneDial simulator.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/tunedial/tunedial-go/pkg/display"
	"github.com/tunedial/tunedial-go/pkg/flipper"
	"github.com/tunedial/tunedial-go/pkg/player"
	"github.com/tunedial/tunedial-go/pkg/remote"
	"github.com/tunedial/tunedial-go/pkg/service"
	"github.com/tunedial/tunedial-go/pkg/station"
)

// Sim handles the interactive console for tunedial-sim.
type Sim struct {
	svc *service.Service
	rec *player.Recorder
	rl  *readline.Instance
}

// New creates the console handler and injects console collaborators
// into the service: a panel and station publisher printing through the
// readline instance, and a recording player. Must be called before
// svc.Start so the injected collaborators take effect.
func New(svc *service.Service) (*Sim, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tunedial> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := &Sim{
		svc: svc,
		rec: player.NewRecorder(),
		rl:  rl,
	}

	svc.SetPanel(display.NewConsole(rl.Stdout()))
	svc.SetPublisher(station.NewConsole(rl.Stdout()))
	svc.SetPlayer(s.rec)

	return s, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the prompt.
func (s *Sim) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Sim) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Sim) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "press", "p":
			s.cmdPress(args)

		case "dial", "d":
			s.cmdDial(args)

		case "signal", "sig":
			s.cmdSignal(args)

		case "channel", "ch":
			s.cmdChannel(args)

		case "eggs", "e":
			s.cmdEggs()

		case "clear":
			s.cmdClear()

		case "status", "st":
			s.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Sim) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
TuneDial Simulator Commands:
  Input:
    press <event>               - Inject a remote event (press MUTE, press 5)
    dial <digits>               - Feed a digit sequence to the dialer
    signal <proto> <addr> <cmd> - Inject a raw IR signal through the keymap
                                  e.g. signal NEC 0x32 0x11

  Pipeline:
    channel [n]                 - Show the lineup, or tune directly to n
    clear                       - Clear the dial buffer
    eggs                        - List special sequences and availability

  General:
    status                      - Show simulator status
    help                        - Show this help
    quit                        - Exit simulator

  Events:
    DIGIT_0..DIGIT_9, CHANNEL_UP, CHANNEL_DOWN, EFFECT_NEXT, EFFECT_PREV,
    VOLUME_UP, VOLUME_DOWN, MUTE, POWER, PAUSE, INFO, MENU, OK, BACK,
    DIGITAL_ANALOG`)
}

// cmdPress injects a named remote event through the full router path,
// debounce included.
func (s *Sim) cmdPress(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: press <event>")
		fmt.Fprintln(s.rl.Stdout(), "  Examples: press MUTE, press channel_up, press 5")
		return
	}

	name := strings.ToUpper(args[0])
	if d, err := strconv.Atoi(name); err == nil && d >= 0 && d <= 9 {
		name = remote.DigitEvent(d).String()
	}

	if err := s.svc.Inject(remote.Event(name)); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Inject failed: %v\n", err)
	}
}

// cmdDial feeds digits straight to the dialer, skipping the router's
// debounce so repeated digits land the way a deliberate hand dials them.
func (s *Sim) cmdDial(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: dial <digits>")
		fmt.Fprintln(s.rl.Stdout(), "  Example: dial 13 (the quiet period then resolves the channel)")
		return
	}

	dialer := s.svc.Dialer()
	if dialer == nil {
		fmt.Fprintln(s.rl.Stdout(), "Service not started")
		return
	}

	for _, r := range args[0] {
		if r < '0' || r > '9' {
			fmt.Fprintf(s.rl.Stdout(), "Not a digit sequence: %q\n", args[0])
			return
		}
		if err := dialer.AddDigit(int(r - '0')); err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Dial failed: %v\n", err)
			return
		}
	}
}

// cmdSignal injects a raw protocol/address/command triple, resolved
// through the keymap exactly like a decoded Flipper line.
func (s *Sim) cmdSignal(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: signal <protocol> <address> <command>")
		fmt.Fprintln(s.rl.Stdout(), "  Example: signal NEC 0x32 0x11")
		return
	}

	sig := flipper.Signal{
		Protocol: args[0],
		Address:  args[1],
		Command:  args[2],
	}
	if err := s.svc.InjectSignal(sig); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Inject failed: %v\n", err)
	}
}

// cmdChannel shows the lineup or tunes directly.
func (s *Sim) cmdChannel(args []string) {
	tuner := s.svc.Tuner()
	if tuner == nil {
		fmt.Fprintln(s.rl.Stdout(), "Service not started")
		return
	}

	if len(args) == 0 {
		fmt.Fprintf(s.rl.Stdout(), "Channel %d (lineup %v)\n", tuner.Current(), tuner.Channels())
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid channel: %v\n", err)
		return
	}

	if !tuner.Tune(n) {
		fmt.Fprintf(s.rl.Stdout(), "Channel %d is not in the lineup\n", n)
	}
}

// cmdEggs lists the registered special sequences with their gate state.
func (s *Sim) cmdEggs() {
	eggs := s.svc.Eggs()
	gate := s.svc.Gate()
	if eggs == nil || gate == nil {
		fmt.Fprintln(s.rl.Stdout(), "Service not started")
		return
	}

	all := eggs.All()
	fmt.Fprintf(s.rl.Stdout(), "\nSpecial Sequences (%d):\n", len(all))
	fmt.Fprintln(s.rl.Stdout(), "-------------------------------------------")
	for _, d := range all {
		state := "ready"
		switch {
		case gate.IsActive(d.Key):
			state = fmt.Sprintf("ACTIVE (%s left)", gate.EffectTimeRemaining(d.Key).Round(time.Second))
		case !gate.CanActivate(d.Key, d.Cooldown):
			state = fmt.Sprintf("cooldown (%s)", gate.TimeUntilAvailable(d.Key, d.Cooldown).Round(time.Second))
		}

		timing := fmt.Sprintf("%s cooldown", d.Cooldown)
		if d.Timed() {
			timing = fmt.Sprintf("%s effect, %s cooldown", d.EffectDuration, d.Cooldown)
		}

		fmt.Fprintf(s.rl.Stdout(), "  %-15s %-7q %-28s %s\n", d.Key, d.Label, timing, state)
	}
	fmt.Fprintln(s.rl.Stdout())
}

// cmdClear empties the dial buffer.
func (s *Sim) cmdClear() {
	dialer := s.svc.Dialer()
	if dialer == nil {
		fmt.Fprintln(s.rl.Stdout(), "Service not started")
		return
	}

	dialer.Clear()
	fmt.Fprintln(s.rl.Stdout(), "Dial buffer cleared")
}

// cmdStatus shows the running pipeline state.
func (s *Sim) cmdStatus() {
	snap := s.svc.Snapshot()

	fmt.Fprintln(s.rl.Stdout(), "\nSimulator Status")
	fmt.Fprintln(s.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(s.rl.Stdout(), "  Version:        %s\n", snap.Version)
	fmt.Fprintf(s.rl.Stdout(), "  Session:        %s\n", snap.SessionID)
	fmt.Fprintf(s.rl.Stdout(), "  Service State:  %s\n", s.svc.State())
	fmt.Fprintf(s.rl.Stdout(), "  Uptime:         %.0fs\n", snap.UptimeS)
	fmt.Fprintf(s.rl.Stdout(), "  Channel:        %d (lineup %v)\n", snap.Channel, snap.Channels)

	dialLine := snap.DialState
	if snap.DialBuffer != "" {
		dialLine = fmt.Sprintf("%s (buffer %q)", dialLine, snap.DialBuffer)
	}
	fmt.Fprintf(s.rl.Stdout(), "  Dial:           %s\n", dialLine)

	active := 0
	for _, e := range snap.Eggs {
		if e.Active {
			active++
		}
	}
	fmt.Fprintf(s.rl.Stdout(), "  Active Effects: %d\n", active)

	keys := s.rec.Keys()
	if len(keys) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "  Player Keys:    none")
	} else {
		tail := keys
		if len(tail) > 8 {
			tail = tail[len(tail)-8:]
		}
		fmt.Fprintf(s.rl.Stdout(), "  Player Keys:    %d sent (latest: %s)\n", len(keys), strings.Join(tail, " "))
	}
	fmt.Fprintln(s.rl.Stdout())
}
