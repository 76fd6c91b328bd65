package status

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/enbility/zeroconf/v2"
)

// Service discovery parameters.
const (
	// ServiceType is the mDNS service type for the status endpoint.
	ServiceType = "_tunedial._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultAddress is the default status listen address.
	DefaultAddress = ":8732"

	// DefaultInstance is the default mDNS instance name.
	DefaultInstance = "tunedial"
)

// writeTimeout bounds how long a slow reader can hold a connection.
const writeTimeout = 5 * time.Second

// ServerConfig configures a status server.
type ServerConfig struct {
	// Address to listen on. Empty means DefaultAddress.
	Address string

	// Snapshot produces the report served to each connection. Required.
	Snapshot func() Snapshot

	// Advertise enables mDNS advertisement of the endpoint.
	Advertise bool

	// Instance is the mDNS instance name. Empty means DefaultInstance.
	Instance string

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// Server answers each TCP connection with one JSON snapshot and closes
// it. The connection protocol is read-free so anything from nc to a
// dashboard poller can consume it.
type Server struct {
	config   ServerConfig
	listener net.Listener
	mdns     *zeroconf.Server

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewServer creates a status server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Snapshot == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if config.Address == "" {
		config.Address = DefaultAddress
	}
	if config.Instance == "" {
		config.Instance = DefaultInstance
	}
	return &Server{config: config}, nil
}

// Start begins listening and, when configured, advertising.
func (s *Server) Start() error {
	if s.running.Load() {
		return fmt.Errorf("status server already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("status listen: %w", err)
	}
	s.listener = listener
	s.running.Store(true)

	if s.config.Advertise {
		if err := s.advertise(); err != nil {
			// The endpoint still works without discovery.
			s.debugLog("mDNS advertisement failed", "error", err)
		}
	}

	s.wg.Add(1)
	go s.acceptLoop()

	s.debugLog("status server listening", "address", listener.Addr().String())
	return nil
}

// Stop closes the listener and withdraws the advertisement.
func (s *Server) Stop() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)

	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			s.debugLog("accept failed", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// serveConn writes one snapshot and closes.
func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := json.NewEncoder(conn).Encode(s.config.Snapshot()); err != nil {
		s.debugLog("snapshot write failed", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}
	s.debugLog("snapshot served", "remote", conn.RemoteAddr().String())
}

// advertise registers the endpoint with mDNS, carrying the version and
// channel lineup in TXT records.
func (s *Server) advertise() error {
	addr, ok := s.listener.Addr().(*net.TCPAddr)
	if !ok {
		return fmt.Errorf("listener has no TCP port")
	}

	snap := s.config.Snapshot()
	server, err := zeroconf.Register(
		s.config.Instance,
		ServiceType,
		Domain,
		addr.Port,
		advertiseTXT(snap.Version, snap.Channels),
		nil,
	)
	if err != nil {
		return fmt.Errorf("registering %s: %w", ServiceType, err)
	}
	s.mdns = server
	return nil
}

// advertiseTXT builds the TXT records for the advertisement.
func advertiseTXT(version string, channels []int) []string {
	return []string{
		"version=" + version,
		"channels=" + channelsCSV(channels),
	}
}

// channelsCSV renders the lineup as a comma-separated list.
func channelsCSV(channels []int) string {
	parts := make([]string, len(channels))
	for i, channel := range channels {
		parts[i] = strconv.Itoa(channel)
	}
	return strings.Join(parts, ",")
}

// debugLog logs a message if a logger is configured.
func (s *Server) debugLog(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}
