package service

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty channels", func(c *Config) { c.Channels = nil }},
		{"non-positive channel", func(c *Config) { c.Channels = []int{1, 0, 3} }},
		{"initial channel not in lineup", func(c *Config) { c.InitialChannel = 55 }},
		{"negative digit timeout", func(c *Config) { c.DigitTimeout = -time.Second }},
		{"negative debounce window", func(c *Config) { c.DebounceWindow = -time.Millisecond }},
		{"negative hold", func(c *Config) { c.SettleHold = -time.Second }},
		{"brightness too high", func(c *Config) { c.Brightness = 8 }},
		{"brightness negative", func(c *Config) { c.Brightness = -1 }},
		{"egg with empty key", func(c *Config) { c.ExtraEggs = []EggSpec{{Code: "HI"}} }},
		{"egg with no action parts", func(c *Config) { c.ExtraEggs = []EggSpec{{Key: "777"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestDefaultConfigInitialChannelIsFirst(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Channels) == 0 {
		t.Fatal("DefaultConfig() has no channels")
	}
	if cfg.InitialChannel != cfg.Channels[0] {
		t.Errorf("InitialChannel = %d, want %d", cfg.InitialChannel, cfg.Channels[0])
	}
}

func TestServiceStateString(t *testing.T) {
	tests := []struct {
		state ServiceState
		want  string
	}{
		{StateIdle, "IDLE"},
		{StateStarting, "STARTING"},
		{StateRunning, "RUNNING"},
		{StateStopping, "STOPPING"},
		{StateStopped, "STOPPED"},
		{ServiceState(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ServiceState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
