// Command tunedial-daemon maps IR remote presses to station control.
//
// The daemon reads decoded IR signals from a Flipper Zero, resolves them
// against the remote keymaps, and drives the channel pipeline: digit
// dialing with a quiet period, channel steps with wraparound, special
// dial sequences, media player keys, the 7-segment front panel, and the
// station's command socket. A TCP status endpoint reports the running
// state as JSON.
//
// Usage:
//
//	tunedial-daemon [flags]
//
// Flags:
//
//	-config string     YAML config file (flags override its settings)
//	-keymap string     YAML remote keymap file (replaces the built-ins)
//	-flipper string    Flipper Zero serial port (empty disables)
//	-display string    7-segment display serial port (empty runs headless)
//	-socket string     station command socket path (empty disables)
//	-status string     status endpoint listen address (empty disables)
//	-mdns              advertise the status endpoint over mDNS
//	-channels string   comma-separated channel lineup
//	-initial int       channel selected after boot
//	-brightness int    panel brightness 0-7
//	-event-log string  append captured events to this .tdlog file
//	-no-greeting       skip the boot and farewell animations
//	-debug             enable debug logging
//
// Examples:
//
//	# Stock station setup with a display attached
//	tunedial-daemon -display /dev/ttyACM1
//
//	# Bench run without hardware, status endpoint only
//	tunedial-daemon -flipper "" -socket "" -status 127.0.0.1:8732 -debug
//
//	# Custom lineup and keymap from files
//	tunedial-daemon -config /etc/tunedial/tunedial.yaml -keymap /etc/tunedial/remotes.yaml
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

	"github.com/tunedial/tunedial-go/pkg/remote"
	"github.com/tunedial/tunedial-go/pkg/service"
	"github.com/tunedial/tunedial-go/pkg/version"
)

// Options holds the command-line configuration.
type Options struct {
	ConfigFile string
	KeymapFile string
	Flipper    string
	Display    string
	Socket     string
	Status     string
	MDNS       bool
	Channels   string
	Initial    int
	Brightness int
	EventLog   string
	NoGreeting bool
	Debug      bool
}

var opts Options

func init() {
	defaults := service.DefaultConfig()

	flag.StringVar(&opts.ConfigFile, "config", "", "YAML config file (flags override its settings)")
	flag.StringVar(&opts.KeymapFile, "keymap", "", "YAML remote keymap file (replaces the built-ins)")
	flag.StringVar(&opts.Flipper, "flipper", defaults.FlipperDevice, "Flipper Zero serial port (empty disables)")
	flag.StringVar(&opts.Display, "display", defaults.DisplayDevice, "7-segment display serial port (empty runs headless)")
	flag.StringVar(&opts.Socket, "socket", defaults.SocketPath, "station command socket path (empty disables)")
	flag.StringVar(&opts.Status, "status", defaults.StatusAddress, "status endpoint listen address (empty disables)")
	flag.BoolVar(&opts.MDNS, "mdns", defaults.MDNS, "advertise the status endpoint over mDNS")
	flag.StringVar(&opts.Channels, "channels", channelsCSV(defaults.Channels), "comma-separated channel lineup")
	flag.IntVar(&opts.Initial, "initial", defaults.InitialChannel, "channel selected after boot")
	flag.IntVar(&opts.Brightness, "brightness", defaults.Brightness, "panel brightness 0-7")
	flag.StringVar(&opts.EventLog, "event-log", "", "append captured events to this .tdlog file")
	flag.BoolVar(&opts.NoGreeting, "no-greeting", false, "skip the boot and farewell animations")
	flag.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg, err := buildConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("tunedial daemon %s", version.Current)
	log.Printf("Channels: %v (starting on %d)", cfg.Channels, cfg.InitialChannel)
	if cfg.FlipperDevice != "" {
		log.Printf("Flipper: %s", cfg.FlipperDevice)
	} else {
		log.Println("Flipper: none (inject-only)")
	}
	if cfg.DisplayDevice != "" {
		log.Printf("Display: %s", cfg.DisplayDevice)
	} else {
		log.Println("Display: none (headless)")
	}
	if cfg.SocketPath != "" {
		log.Printf("Station socket: %s", cfg.SocketPath)
	}
	if cfg.EventLogPath != "" {
		log.Printf("Event log: %s", cfg.EventLogPath)
	}

	svc, err := service.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		log.Fatalf("Failed to start service: %v", err)
	}
	log.Printf("Service started (state: %s, session: %s)", svc.State(), svc.SessionID())
	if addr := svc.StatusAddr(); addr != "" {
		log.Printf("Status endpoint: %s", addr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v", sig)
	log.Println("Shutting down...")

	if err := svc.Stop(); err != nil {
		log.Printf("Error stopping service: %v", err)
	}

	log.Println("Goodbye!")
}

// buildConfig merges defaults, the optional config file, and the flags
// actually set on the command line, in that order.
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
		case "flipper":
			cfg.FlipperDevice = opts.Flipper
		case "display":
			cfg.DisplayDevice = opts.Display
		case "socket":
			cfg.SocketPath = opts.Socket
		case "status":
			cfg.StatusAddress = opts.Status
		case "mdns":
			cfg.MDNS = opts.MDNS
		case "channels":
			channels, err := parseChannels(opts.Channels)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Channels = channels
		case "initial":
			cfg.InitialChannel = opts.Initial
		case "brightness":
			cfg.Brightness = opts.Brightness
		case "event-log":
			cfg.EventLogPath = opts.EventLog
		case "no-greeting":
			cfg.SkipGreeting = opts.NoGreeting
		}
	})
	if flagErr != nil {
		return service.Config{}, flagErr
	}

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
