package service

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig is the YAML form of Config. Scalar fields are pointers so
// absent keys leave the base config untouched; durations are strings in
// time.ParseDuration form ("700ms", "1.5s").
type yamlConfig struct {
	Channels          []int     `yaml:"channels"`
	InitialChannel    *int      `yaml:"initial_channel"`
	DigitTimeout      string    `yaml:"digit_timeout"`
	DebounceWindow    string    `yaml:"debounce_window"`
	ErrorHold         string    `yaml:"error_hold"`
	SettleHold        string    `yaml:"settle_hold"`
	RejectHold        string    `yaml:"reject_hold"`
	StepHold          string    `yaml:"step_hold"`
	FlashHold         string    `yaml:"flash_hold"`
	OverlayHold       string    `yaml:"overlay_hold"`
	PowerHold         string    `yaml:"power_hold"`
	FlipperDevice     *string   `yaml:"flipper_device"`
	DisplayDevice     *string   `yaml:"display_device"`
	Brightness        *int      `yaml:"brightness"`
	SocketPath        *string   `yaml:"socket_path"`
	PlayerWindowClass *string   `yaml:"player_window_class"`
	PlayerDisplay     *string   `yaml:"player_display"`
	StatusAddress     *string   `yaml:"status_address"`
	MDNS              *bool     `yaml:"mdns"`
	EventLog          *string   `yaml:"event_log"`
	Eggs              []yamlEgg `yaml:"eggs"`
}

// yamlEgg is the YAML form of EggSpec.
type yamlEgg struct {
	Key         string `yaml:"key"`
	Label       string `yaml:"label"`
	Code        string `yaml:"code"`
	Light       string `yaml:"light"`
	PlayerKey   string `yaml:"player_key"`
	Cooldown    string `yaml:"cooldown"`
	Effect      string `yaml:"effect"`
	Description string `yaml:"description"`
}

// LoadConfig reads a service config file and returns DefaultConfig
// overlaid with its settings.
//
// File format:
//
//	channels: [1, 2, 3, 8, 9, 13]
//	initial_channel: 1
//	digit_timeout: 1.5s
//	flipper_device: /dev/ttyACM0
//	display_device: /dev/ttyACM1
//	status_address: ":8732"
//	mdns: true
//	eggs:
//	  - key: "777"
//	    label: LUCK
//	    light: "gold-pulse 10"
//	    cooldown: 1h
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses config data on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Config{}, fmt.Errorf("YAML parse error: %w", err)
	}

	cfg := DefaultConfig()
	if len(y.Channels) > 0 {
		cfg.Channels = y.Channels
	}
	if y.InitialChannel != nil {
		cfg.InitialChannel = *y.InitialChannel
	}
	durations := []struct {
		dst   *time.Duration
		value string
		key   string
	}{
		{&cfg.DigitTimeout, y.DigitTimeout, "digit_timeout"},
		{&cfg.DebounceWindow, y.DebounceWindow, "debounce_window"},
		{&cfg.ErrorHold, y.ErrorHold, "error_hold"},
		{&cfg.SettleHold, y.SettleHold, "settle_hold"},
		{&cfg.RejectHold, y.RejectHold, "reject_hold"},
		{&cfg.StepHold, y.StepHold, "step_hold"},
		{&cfg.FlashHold, y.FlashHold, "flash_hold"},
		{&cfg.OverlayHold, y.OverlayHold, "overlay_hold"},
		{&cfg.PowerHold, y.PowerHold, "power_hold"},
	}
	for _, d := range durations {
		if err := applyDuration(d.dst, d.value, d.key); err != nil {
			return Config{}, err
		}
	}
	if y.FlipperDevice != nil {
		cfg.FlipperDevice = *y.FlipperDevice
	}
	if y.DisplayDevice != nil {
		cfg.DisplayDevice = *y.DisplayDevice
	}
	if y.Brightness != nil {
		cfg.Brightness = *y.Brightness
	}
	if y.SocketPath != nil {
		cfg.SocketPath = *y.SocketPath
	}
	if y.PlayerWindowClass != nil {
		cfg.PlayerWindowClass = *y.PlayerWindowClass
	}
	if y.PlayerDisplay != nil {
		cfg.PlayerDisplay = *y.PlayerDisplay
	}
	if y.StatusAddress != nil {
		cfg.StatusAddress = *y.StatusAddress
	}
	if y.MDNS != nil {
		cfg.MDNS = *y.MDNS
	}
	if y.EventLog != nil {
		cfg.EventLogPath = *y.EventLog
	}

	for i, ye := range y.Eggs {
		spec := EggSpec{
			Key:         ye.Key,
			Label:       ye.Label,
			Code:        ye.Code,
			Light:       ye.Light,
			PlayerKey:   ye.PlayerKey,
			Description: ye.Description,
		}
		if err := applyDuration(&spec.Cooldown, ye.Cooldown, fmt.Sprintf("eggs[%d].cooldown", i)); err != nil {
			return Config{}, err
		}
		if err := applyDuration(&spec.Effect, ye.Effect, fmt.Sprintf("eggs[%d].effect", i)); err != nil {
			return Config{}, err
		}
		cfg.ExtraEggs = append(cfg.ExtraEggs, spec)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDuration(dst *time.Duration, value, key string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	*dst = d
	return nil
}
