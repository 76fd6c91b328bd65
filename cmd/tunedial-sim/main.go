// Command tunedial-sim drives the channel mapper without hardware.
//
// The simulator runs the full pipeline in-process: panel output and
// station commands print to the console, player keys are recorded, and
// remote presses come from an interactive prompt instead of a Flipper.
// Timing behaves exactly as on the box, so dial quiet periods, panel
// holds, cooldowns, and timed effects can all be exercised by hand.
//
// Usage:
//
//	tunedial-sim [flags]
//
// Flags:
//
//	-config string     YAML config file (flags override its settings)
//	-keymap string     YAML remote keymap file (replaces the built-ins)
//	-channels string   comma-separated channel lineup
//	-initial int       channel selected after boot
//	-event-log string  append captured events to this .tdlog file
//	-greeting          play the boot and farewell animations
//	-debug             enable debug logging
//
// Examples:
//
//	# Default lineup
//	tunedial-sim
//
//	# Custom lineup with event capture
//	tunedial-sim -channels 1,2,3,8,9,13 -event-log /tmp/session.tdlog
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/tunedial/tunedial-go/cmd/tunedial-sim/interactive"
	"github.com/tunedial/tunedial-go/pkg/remote"
	"github.com/tunedial/tunedial-go/pkg/service"
	"github.com/tunedial/tunedial-go/pkg/version"
)

// Options holds the command-line configuration.
type Options struct {
	ConfigFile string
	KeymapFile string
	Channels   string
	Initial    int
	EventLog   string
	Greeting   bool
	Debug      bool
}

var opts Options

func init() {
	defaults := service.DefaultConfig()

	flag.StringVar(&opts.ConfigFile, "config", "", "YAML config file (flags override its settings)")
	flag.StringVar(&opts.KeymapFile, "keymap", "", "YAML remote keymap file (replaces the built-ins)")
	flag.StringVar(&opts.Channels, "channels", channelsCSV(defaults.Channels), "comma-separated channel lineup")
	flag.IntVar(&opts.Initial, "initial", defaults.InitialChannel, "channel selected after boot")
	flag.StringVar(&opts.EventLog, "event-log", "", "append captured events to this .tdlog file")
	flag.BoolVar(&opts.Greeting, "greeting", false, "play the boot and farewell animations")
	flag.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg, err := buildConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	svc, err := service.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	ic, err := interactive.New(svc)
	if err != nil {
		log.Fatalf("Failed to create console: %v", err)
	}
	// Redirect log output through readline to avoid interfering with input
	log.SetOutput(ic.Stdout())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		log.Fatalf("Failed to start service: %v", err)
	}
	log.Printf("tunedial simulator %s (session %s)", version.Current, svc.SessionID())
	log.Printf("Channels: %v (starting on %d)", cfg.Channels, cfg.InitialChannel)
	if cfg.EventLogPath != "" {
		log.Printf("Event log: %s", cfg.EventLogPath)
	}

	go ic.Run(ctx, cancel)

	// Wait for shutdown signal or the quit command
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	if err := svc.Stop(); err != nil {
		log.Printf("Error stopping service: %v", err)
	}

	log.Println("Goodbye!")
}

// buildConfig merges defaults, the optional config file, and the flags
// actually set on the command line, then forces the hardware surfaces
// off: the simulator's collaborators take their place.
func buildConfig() (service.Config, error) {
	cfg := service.DefaultConfig()
	if opts.ConfigFile != "" {
		loaded, err := service.LoadConfig(opts.ConfigFile)
		if err != nil {
			return service.Config{}, err
		}
		cfg = loaded
	}

	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "channels":
			channels, err := parseChannels(opts.Channels)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Channels = channels
		case "initial":
			cfg.InitialChannel = opts.Initial
		case "event-log":
			cfg.EventLogPath = opts.EventLog
		}
	})
	if flagErr != nil {
		return service.Config{}, flagErr
	}

	cfg.FlipperDevice = ""
	cfg.DisplayDevice = ""
	cfg.SocketPath = ""
	cfg.StatusAddress = ""
	cfg.MDNS = false
	cfg.SkipGreeting = !opts.Greeting

	if opts.KeymapFile != "" {
		remotes, err := remote.LoadKeymaps(opts.KeymapFile)
		if err != nil {
			return service.Config{}, err
		}
		cfg.Keymaps = remotes
	}

	if opts.Debug {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	if err := cfg.Validate(); err != nil {
		return service.Config{}, err
	}
	return cfg, nil
}

func parseChannels(csv string) ([]int, error) {
	parts := strings.Split(csv, ",")
	channels := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("channel list: %q is not a number", part)
		}
		channels = append(channels, n)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("channel list is empty")
	}
	return channels, nil
}

func channelsCSV(channels []int) string {
	parts := make([]string, len(channels))
	for i, ch := range channels {
		parts[i] = strconv.Itoa(ch)
	}
	return strings.Join(parts, ",")
}
