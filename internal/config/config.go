// Package config holds daemon settings: built-in defaults, an optional YAML
// file, and validation. Command-line flags are applied on top by main.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/sweeney/heartworm/internal/gpio"
	"github.com/sweeney/heartworm/internal/logic"
	"github.com/sweeney/heartworm/internal/timer"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the effective daemon configuration.
type Config struct {
	Chip      string
	PinButton int
	PinLED    int
	Debounce  time.Duration

	Tick time.Duration
	Hold time.Duration

	AdvertiseInterval time.Duration
	Rotate            bool
	IdentityURL       string
	CompanyID         uint16

	BlinkOn  time.Duration
	BlinkOff time.Duration

	Broker     string
	ClientID   string
	BufferSize int
	Heartbeat  time.Duration
	HTTPAddr   string
	WSBroker   string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Chip:              gpio.DefaultChip,
		PinButton:         gpio.DefaultPinButton,
		PinLED:            gpio.DefaultPinLED,
		Debounce:          gpio.DefaultDebounce,
		Tick:              timer.DefaultTick,
		Hold:              timer.DefaultHold,
		AdvertiseInterval: 5 * time.Second,
		Rotate:            true,
		IdentityURL:       logic.DefaultIdentityURL,
		CompanyID:         logic.DefaultCompanyID,
		BlinkOn:           gpio.DefaultSoftBlink.On,
		BlinkOff:          gpio.DefaultSoftBlink.Off,
		Broker:            "tcp://192.168.1.200:1883",
		ClientID:          "heartworm",
		BufferSize:        64,
		Heartbeat:         15 * time.Minute,
		HTTPAddr:          ":80",
		WSBroker:          "=broker",
	}
}

// SoftBlink returns the period-complete LED pattern.
func (c Config) SoftBlink() gpio.Pattern {
	return gpio.Pattern{On: c.BlinkOn, Off: c.BlinkOff}
}

// fileConfig mirrors Config in the YAML file. Pointers distinguish unset keys
// from zero values.
type fileConfig struct {
	Chip      *string `yaml:"chip"`
	PinButton *int    `yaml:"pin_button"`
	PinLED    *int    `yaml:"pin_led"`
	Debounce  *string `yaml:"debounce"`

	Tick *string `yaml:"tick"`
	Hold *string `yaml:"hold"`

	Broadcast struct {
		Interval    *string `yaml:"interval"`
		Rotate      *bool   `yaml:"rotate"`
		IdentityURL *string `yaml:"identity_url"`
		CompanyID   *uint16 `yaml:"company_id"`
	} `yaml:"broadcast"`

	Blink struct {
		On  *string `yaml:"on"`
		Off *string `yaml:"off"`
	} `yaml:"blink"`

	MQTT struct {
		Broker     *string `yaml:"broker"`
		ClientID   *string `yaml:"client_id"`
		BufferSize *int    `yaml:"buffer_size"`
		WSBroker   *string `yaml:"ws_broker"`
	} `yaml:"mqtt"`

	Heartbeat *string `yaml:"heartbeat"`
	HTTPAddr  *string `yaml:"http"`
}

// Load reads the YAML file at path over the defaults.
// An empty path or a missing file returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	return Parse(raw, cfg)
}

// Parse applies YAML document raw over base.
func Parse(raw []byte, base Config) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return base, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg := base
	setString(&cfg.Chip, fc.Chip)
	setInt(&cfg.PinButton, fc.PinButton)
	setInt(&cfg.PinLED, fc.PinLED)
	setString(&cfg.IdentityURL, fc.Broadcast.IdentityURL)
	setString(&cfg.Broker, fc.MQTT.Broker)
	setString(&cfg.ClientID, fc.MQTT.ClientID)
	setInt(&cfg.BufferSize, fc.MQTT.BufferSize)
	setString(&cfg.WSBroker, fc.MQTT.WSBroker)
	setString(&cfg.HTTPAddr, fc.HTTPAddr)
	if fc.Broadcast.Rotate != nil {
		cfg.Rotate = *fc.Broadcast.Rotate
	}
	if fc.Broadcast.CompanyID != nil {
		cfg.CompanyID = *fc.Broadcast.CompanyID
	}

	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"debounce", fc.Debounce, &cfg.Debounce},
		{"tick", fc.Tick, &cfg.Tick},
		{"hold", fc.Hold, &cfg.Hold},
		{"broadcast.interval", fc.Broadcast.Interval, &cfg.AdvertiseInterval},
		{"blink.on", fc.Blink.On, &cfg.BlinkOn},
		{"blink.off", fc.Blink.Off, &cfg.BlinkOff},
		{"heartbeat", fc.Heartbeat, &cfg.Heartbeat},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return base, fmt.Errorf("%w: %s: %v", ErrInvalid, d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

// Validate checks values the runtime cannot recover from.
func (c Config) Validate() error {
	var problems []string

	if c.Chip == "" {
		problems = append(problems, "chip is empty")
	}
	if c.PinButton < 0 || c.PinLED < 0 {
		problems = append(problems, "pins must be non-negative")
	}
	if c.PinButton == c.PinLED {
		problems = append(problems, fmt.Sprintf("button and LED share pin %d", c.PinButton))
	}
	if c.Debounce < 0 {
		problems = append(problems, "debounce must be non-negative")
	}
	if c.Tick <= 0 {
		problems = append(problems, "tick must be positive")
	}
	if c.Hold <= 0 {
		problems = append(problems, "hold must be positive")
	}
	if c.AdvertiseInterval <= 0 {
		problems = append(problems, "broadcast interval must be positive")
	}
	if c.IdentityURL == "" {
		problems = append(problems, "identity url is empty")
	}
	if c.BlinkOn <= 0 || c.BlinkOff <= 0 {
		problems = append(problems, "blink on/off must be positive")
	}
	if c.Heartbeat < 0 {
		problems = append(problems, "heartbeat must be non-negative")
	}
	if c.ClientID == "" {
		problems = append(problems, "mqtt client id is empty")
	}
	if err := validateBroker(c.Broker); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, problems)
	}
	return nil
}

func validateBroker(broker string) error {
	u, err := url.Parse(broker)
	if err != nil {
		return fmt.Errorf("broker %q: %v", broker, err)
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss":
	default:
		return fmt.Errorf("broker %q: unsupported scheme %q", broker, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("broker %q: missing host", broker)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
