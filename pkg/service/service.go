// Package service composes the mapper pipeline: IR receiver, keymap,
// repeat filter, router, dialer, tuner, player, station publisher, and
// the status endpoint, under one lifecycle.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tunedial/tunedial-go/pkg/channel"
	"github.com/tunedial/tunedial-go/pkg/cooldown"
	"github.com/tunedial/tunedial-go/pkg/dial"
	"github.com/tunedial/tunedial-go/pkg/display"
	"github.com/tunedial/tunedial-go/pkg/egg"
	"github.com/tunedial/tunedial-go/pkg/eventlog"
	"github.com/tunedial/tunedial-go/pkg/flipper"
	"github.com/tunedial/tunedial-go/pkg/player"
	"github.com/tunedial/tunedial-go/pkg/remote"
	"github.com/tunedial/tunedial-go/pkg/station"
	"github.com/tunedial/tunedial-go/pkg/status"
	"github.com/tunedial/tunedial-go/pkg/version"
)

// Service is the composition root for the mapper daemon. Collaborators
// for devices the config does not name can be injected with the setters
// before Start; everything else is built from the config.
type Service struct {
	mu     sync.RWMutex
	config Config
	state  ServiceState

	sessionID string
	startedAt time.Time

	// Collaborators. Injected ones survive restarts; opened ones are
	// released on Stop.
	panel             display.Panel
	publisher         station.Publisher
	pl                player.Player
	panelInjected     bool
	publisherInjected bool
	playerInjected    bool

	// headless is true when no panel is attached for this run.
	headless bool

	keymap *remote.Keymap
	gate   *cooldown.Manager
	eggs   *egg.Registry
	tuner  *channel.Tuner
	dialer *dial.Dialer
	router *Router

	receiver  *flipper.Receiver
	statusSrv *status.Server

	events  eventlog.Logger
	fileLog *eventlog.FileLogger

	ownedPanel io.Closer

	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a service from the config.
func New(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		config: config,
		state:  StateIdle,
		logger: config.Logger,
	}, nil
}

// SetPanel injects a front panel, taking the place of DisplayDevice.
// Must be called before Start.
func (s *Service) SetPanel(panel display.Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = panel
	s.panelInjected = panel != nil
}

// SetPublisher injects a station publisher, taking the place of
// SocketPath. Must be called before Start.
func (s *Service) SetPublisher(publisher station.Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = publisher
	s.publisherInjected = publisher != nil
}

// SetPlayer injects a media player, taking the place of the xdotool
// targeting config. Must be called before Start.
func (s *Service) SetPlayer(pl player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pl = pl
	s.playerInjected = pl != nil
}

// State returns the current service state.
func (s *Service) State() ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SessionID returns the ID stamped on this run's captured events.
// Empty before the first Start.
func (s *Service) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Start brings the pipeline up: event capture, panel, publisher,
// player, special actions, dialer, router, boot animation, receiver,
// and status endpoint, in that order. A missing display degrades to
// headless operation; a missing Flipper is fatal unless FlipperDevice
// is empty.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateStopped {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateStarting
	s.sessionID = uuid.NewString()
	s.startedAt = time.Now()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if err := s.buildEventLog(); err != nil {
		s.abortStart()
		return err
	}

	panel := s.buildPanel()
	s.buildPublisher()
	s.buildPlayer()

	gate := cooldown.NewManager()
	gate.OnExpiry(func(key string) {
		s.debugLog("effect expired", "key", key)
		s.events.Log(eventlog.Event{
			Source:   eventlog.SourceEggs,
			Category: eventlog.CategoryState,
			Egg:      &eventlog.EggEvent{Key: key, Outcome: eventlog.EggExpired},
		})
	})

	tuner, err := channel.NewTunerWithConfig(channel.Config{
		RejectHold: s.config.RejectHold,
		StepHold:   s.config.StepHold,
	}, s.config.Channels, panel, s.publisher)
	if err != nil {
		s.abortStart()
		return err
	}
	tuner.SetCurrent(s.config.InitialChannel)
	tuner.SetLogger(s.logger)
	tuner.SetEventLogger(s.events)

	eggs := egg.NewRegistry()
	deps := EggDeps{Panel: panel, Player: s.pl, Tuner: tuner, Gate: gate}
	for _, d := range BuildDefaultEggs(deps) {
		if err := eggs.Register(d); err != nil {
			s.abortStart()
			return fmt.Errorf("registering action %q: %w", d.Key, err)
		}
	}
	for _, spec := range s.config.ExtraEggs {
		if err := eggs.Register(spec.Build(deps)); err != nil {
			s.abortStart()
			return fmt.Errorf("registering action %q: %w", spec.Key, err)
		}
	}

	dialer := dial.NewDialerWithConfig(dial.Config{
		DigitTimeout: s.config.DigitTimeout,
		ErrorHold:    s.config.ErrorHold,
		SettleHold:   s.config.SettleHold,
	}, panel, tuner, eggs, gate)
	dialer.SetLogger(s.logger)
	dialer.SetEventLogger(s.events)

	router := NewRouterWithConfig(RouterConfig{
		DebounceWindow: s.config.DebounceWindow,
		FlashHold:      s.config.FlashHold,
		OverlayHold:    s.config.OverlayHold,
		PowerHold:      s.config.PowerHold,
	}, dialer, tuner, panel, s.pl, s.publisher)
	router.SetLogger(s.logger)

	keymap := remote.DefaultKeymaps()
	if len(s.config.Keymaps) > 0 {
		keymap = remote.NewKeymap(s.config.Keymaps...)
	}

	s.mu.Lock()
	s.gate = gate
	s.tuner = tuner
	s.eggs = eggs
	s.dialer = dialer
	s.router = router
	s.keymap = keymap
	s.mu.Unlock()

	if !s.config.SkipGreeting && !s.headless {
		if err := display.Play(s.ctx, panel, display.BootSteps(), tuner.Current()); err != nil {
			s.abortStart()
			return err
		}
	} else {
		tuner.ShowCurrent()
	}

	if s.config.FlipperDevice != "" {
		if err := s.startReceiver(); err != nil {
			s.abortStart()
			return err
		}
	}

	s.startStatus()

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()

	s.logServiceState(StateStarting, StateRunning, "")
	s.debugLog("service running",
		"session", s.sessionID,
		"channel", tuner.Current(),
		"eggs", eggs.Count())
	return nil
}

// Stop tears the pipeline down: receiver and status endpoint first,
// then pending dial and effect timers, the farewell animation, and the
// capture file.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.state = StateStopping
	receiver := s.receiver
	statusSrv := s.statusSrv
	dialer := s.dialer
	gate := s.gate
	panel := s.panel
	headless := s.headless
	s.mu.Unlock()

	if receiver != nil {
		_ = receiver.Stop()
	}
	if statusSrv != nil {
		statusSrv.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}

	dialer.Clear()
	gate.CleanupAll()

	if !s.config.SkipGreeting && !headless {
		_ = display.Play(context.Background(), panel, display.FarewellSteps(), 0)
		panel.Clear()
	}

	s.logServiceState(StateRunning, StateStopped, "")

	if s.fileLog != nil {
		_ = s.fileLog.Close()
		s.fileLog = nil
	}
	if s.ownedPanel != nil {
		_ = s.ownedPanel.Close()
		s.ownedPanel = nil
	}

	s.mu.Lock()
	if !s.panelInjected {
		s.panel = nil
	}
	if !s.publisherInjected {
		s.publisher = nil
	}
	if !s.playerInjected {
		s.pl = nil
	}
	s.receiver = nil
	s.statusSrv = nil
	s.state = StateStopped
	s.mu.Unlock()

	s.debugLog("service stopped")
	return nil
}

// Inject delivers a decoded event through the repeat filter and router,
// exactly as a received signal would after keymap resolution.
func (s *Service) Inject(event remote.Event) error {
	s.mu.RLock()
	state := s.state
	router := s.router
	tuner := s.tuner
	s.mu.RUnlock()
	if state != StateRunning {
		return ErrNotStarted
	}

	delivered := router.HandleEvent(event)
	s.events.Log(eventlog.Event{
		Source:   eventlog.SourceRouter,
		Category: eventlog.CategoryInput,
		Channel:  tuner.Current(),
		Signal: &eventlog.SignalEvent{
			Event:     event.String(),
			Match:     matchKind(event),
			Debounced: !delivered,
		},
	})
	return nil
}

// InjectSignal runs a raw signal through the keymap and router, as if
// the receiver had decoded it.
func (s *Service) InjectSignal(sig flipper.Signal) error {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state != StateRunning {
		return ErrNotStarted
	}
	s.handleSignal(sig)
	return nil
}

// RegisterEgg adds a special action at runtime on top of the default
// set. Existing keys are replaced.
func (s *Service) RegisterEgg(d egg.Descriptor) error {
	s.mu.RLock()
	eggs := s.eggs
	s.mu.RUnlock()
	if eggs == nil {
		return ErrNotStarted
	}
	return eggs.Register(d)
}

// Snapshot reports the service's current state for the status endpoint.
func (s *Service) Snapshot() status.Snapshot {
	s.mu.RLock()
	sessionID := s.sessionID
	startedAt := s.startedAt
	dialer := s.dialer
	tuner := s.tuner
	eggs := s.eggs
	gate := s.gate
	s.mu.RUnlock()

	snap := status.Snapshot{
		Version:   version.Current,
		SessionID: sessionID,
	}
	if !startedAt.IsZero() {
		snap.UptimeS = time.Since(startedAt).Seconds()
	}
	if tuner != nil {
		snap.Channel = tuner.Current()
		snap.Channels = tuner.Channels()
	}
	if dialer != nil {
		snap.DialState = dialer.State().String()
		snap.DialBuffer = dialer.Buffer()
	}
	if eggs != nil && gate != nil {
		snap.Eggs = status.BuildEggStatus(eggs, gate)
	}
	return snap
}

// Dialer returns the digit dialer. Nil before the first Start.
func (s *Service) Dialer() *dial.Dialer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialer
}

// Tuner returns the channel tuner. Nil before the first Start.
func (s *Service) Tuner() *channel.Tuner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tuner
}

// Eggs returns the special-action registry. Nil before the first Start.
func (s *Service) Eggs() *egg.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eggs
}

// Gate returns the cooldown gate. Nil before the first Start.
func (s *Service) Gate() *cooldown.Manager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gate
}

// StatusAddr returns the bound status endpoint address, or "" when the
// endpoint is not running. Useful when the configured address uses port 0.
func (s *Service) StatusAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.statusSrv == nil {
		return ""
	}
	if addr := s.statusSrv.Addr(); addr != nil {
		return addr.String()
	}
	return ""
}

// buildEventLog assembles the capture chain: optional file logger plus
// the slog adapter, stamped with the session ID.
func (s *Service) buildEventLog() error {
	var sinks []eventlog.Logger
	if s.config.EventLogPath != "" {
		fileLog, err := eventlog.NewFileLogger(s.config.EventLogPath)
		if err != nil {
			return fmt.Errorf("opening event log: %w", err)
		}
		s.fileLog = fileLog
		sinks = append(sinks, fileLog)
	}
	if s.logger != nil {
		sinks = append(sinks, eventlog.NewSlogAdapter(s.logger))
	}

	switch len(sinks) {
	case 0:
		s.events = eventlog.NoopLogger{}
	case 1:
		s.events = eventlog.WithSession(s.sessionID, sinks[0])
	default:
		s.events = eventlog.WithSession(s.sessionID, eventlog.NewMultiLogger(sinks...))
	}
	return nil
}

// buildPanel resolves the front panel: injected, opened from config, or
// a discard for headless runs. Open failures degrade to headless.
func (s *Service) buildPanel() display.Panel {
	s.mu.RLock()
	panel := s.panel
	s.mu.RUnlock()

	if panel == nil && s.config.DisplayDevice != "" {
		seg, err := display.OpenPort(s.config.DisplayDevice)
		if err != nil {
			s.debugLog("display unavailable, continuing headless",
				"device", s.config.DisplayDevice, "error", err)
			s.logError(eventlog.SourceService, err, "opening display")
		} else {
			seg.SetLogger(s.logger)
			s.ownedPanel = seg
			panel = seg
		}
	}

	headless := panel == nil
	if headless {
		panel = display.Noop{}
	}
	panel.SetBrightness(s.config.Brightness)
	panel.On()

	s.mu.Lock()
	s.panel = panel
	s.headless = headless
	s.mu.Unlock()
	return panel
}

func (s *Service) buildPublisher() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publisher != nil {
		return
	}
	if s.config.SocketPath == "" {
		s.publisher = station.Noop{}
		return
	}
	fp := station.NewFilePublisher(s.config.SocketPath)
	fp.SetLogger(s.logger)
	s.publisher = fp
}

func (s *Service) buildPlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pl != nil {
		return
	}
	mpv := player.NewMPVWithTarget(s.config.PlayerWindowClass, s.config.PlayerDisplay)
	mpv.SetLogger(s.logger)
	mpv.SetEventLogger(s.events)
	s.pl = mpv
}

// startReceiver opens the Flipper port and begins the read loop.
func (s *Service) startReceiver() error {
	port, err := flipper.OpenPort(s.config.FlipperDevice)
	if err != nil {
		return fmt.Errorf("connecting flipper: %w", err)
	}

	recv := flipper.NewReceiver(port)
	recv.SetLogger(s.logger)
	recv.OnSignal(s.handleSignal)
	recv.OnError(func(err error) {
		s.debugLog("receiver error", "error", err)
		s.logError(eventlog.SourceReceiver, err, "reading signals")
	})
	if err := recv.Start(s.ctx); err != nil {
		_ = port.Close()
		return fmt.Errorf("starting receiver: %w", err)
	}

	s.mu.Lock()
	s.receiver = recv
	s.mu.Unlock()
	return nil
}

// startStatus brings the status endpoint up. Failures degrade to a log
// line; the pipeline runs without it.
func (s *Service) startStatus() {
	if s.config.StatusAddress == "" {
		return
	}

	srv, err := status.NewServer(status.ServerConfig{
		Address:   s.config.StatusAddress,
		Snapshot:  s.Snapshot,
		Advertise: s.config.MDNS,
		Logger:    s.logger,
	})
	if err == nil {
		err = srv.Start()
	}
	if err != nil {
		s.debugLog("status endpoint unavailable",
			"address", s.config.StatusAddress, "error", err)
		s.logError(eventlog.SourceService, err, "starting status endpoint")
		return
	}

	s.mu.Lock()
	s.statusSrv = srv
	s.mu.Unlock()
}

// handleSignal is the receiver callback: keymap resolution, repeat
// filter, dispatch, and the capture record with the raw codes.
func (s *Service) handleSignal(sig flipper.Signal) {
	s.mu.RLock()
	keymap := s.keymap
	router := s.router
	tuner := s.tuner
	s.mu.RUnlock()
	if keymap == nil || router == nil {
		return
	}

	event := keymap.Map(sig.Protocol, sig.Address, sig.Command)
	delivered := router.HandleEvent(event)

	s.events.Log(eventlog.Event{
		Source:   eventlog.SourceReceiver,
		Category: eventlog.CategoryInput,
		Channel:  tuner.Current(),
		Signal: &eventlog.SignalEvent{
			Protocol:  sig.Protocol,
			Address:   sig.Address,
			Command:   sig.Command,
			Event:     event.String(),
			Match:     matchKind(event),
			Debounced: !delivered,
		},
	})
}

// abortStart releases whatever Start opened before failing and returns
// the service to idle.
func (s *Service) abortStart() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.fileLog != nil {
		_ = s.fileLog.Close()
		s.fileLog = nil
	}
	if s.ownedPanel != nil {
		_ = s.ownedPanel.Close()
		s.ownedPanel = nil
	}

	s.mu.Lock()
	if !s.panelInjected {
		s.panel = nil
	}
	if !s.publisherInjected {
		s.publisher = nil
	}
	if !s.playerInjected {
		s.pl = nil
	}
	s.state = StateIdle
	s.mu.Unlock()
}

func matchKind(event remote.Event) eventlog.MatchKind {
	switch {
	case event.IsUnmapped():
		return eventlog.MatchUnmapped
	case event.IsUnknown():
		return eventlog.MatchUnknown
	default:
		return eventlog.MatchMapped
	}
}

func (s *Service) logServiceState(old, new ServiceState, reason string) {
	s.events.Log(eventlog.Event{
		Source:   eventlog.SourceService,
		Category: eventlog.CategoryState,
		State: &eventlog.StateEvent{
			Entity:   eventlog.EntityService,
			OldState: old.String(),
			NewState: new.String(),
			Reason:   reason,
		},
	})
}

func (s *Service) logError(source eventlog.Source, err error, context string) {
	if s.events == nil {
		return
	}
	s.events.Log(eventlog.Event{
		Source:   source,
		Category: eventlog.CategoryError,
		Error: &eventlog.ErrorEvent{
			Source:  source,
			Message: err.Error(),
			Context: context,
		},
	})
}

func (s *Service) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
