// Package config loads daemon configuration from YAML with environment
// overrides. Command-line flags are applied on top by cmd/athermo.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/athermo/internal/automation"
	"github.com/sweeney/athermo/internal/gpio"
)

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("invalid config")

// Config is the root configuration.
type Config struct {
	GPIO        GPIOConfig          `yaml:"gpio"`
	MQTT        MQTTConfig          `yaml:"mqtt"`
	HTTP        HTTPConfig          `yaml:"http"`
	QueueSize   int                 `yaml:"queue_size"`
	Automations []automation.Script `yaml:"automations"`
}

// GPIOConfig selects the backend and the two pins. A pin that is omitted
// or has number -1 is left unconfigured.
type GPIOConfig struct {
	Backend      string     `yaml:"backend"`
	Chip         string     `yaml:"chip"`
	PIRDisPin    *PinConfig `yaml:"pir_dis_pin"`
	PeriphVCCPin *PinConfig `yaml:"periph_vcc_pin"`
}

// PinConfig is one output pin.
type PinConfig struct {
	Number   int  `yaml:"number"`
	Inverted bool `yaml:"inverted"`
}

// MQTTConfig holds broker settings. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HTTPConfig holds the status server address. Empty disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GPIO: GPIOConfig{
			Backend:      gpio.BackendChardev,
			Chip:         gpio.DefaultChip,
			PIRDisPin:    &PinConfig{Number: gpio.DefaultPinPIRDis},
			PeriphVCCPin: &PinConfig{Number: gpio.DefaultPinPeriphVCC},
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://192.168.1.200:1883",
			ClientID: "athermo",
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
		QueueSize: automation.DefaultQueueSize,
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults with environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ATHERMO_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("ATHERMO_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("ATHERMO_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("ATHERMO_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
}

// Validate checks field ranges. Automations are validated when the
// registry compiles them.
func (c *Config) Validate() error {
	switch c.GPIO.Backend {
	case gpio.BackendChardev, gpio.BackendPeriph:
	default:
		return fmt.Errorf("%w: gpio.backend %q (want %s or %s)", ErrInvalid, c.GPIO.Backend, gpio.BackendChardev, gpio.BackendPeriph)
	}
	for name, p := range map[string]*PinConfig{"pir_dis_pin": c.GPIO.PIRDisPin, "periph_vcc_pin": c.GPIO.PeriphVCCPin} {
		if p != nil && p.Number < -1 {
			return fmt.Errorf("%w: gpio.%s.number %d", ErrInvalid, name, p.Number)
		}
	}
	if pir, ok := c.PIRDis(); ok {
		if vcc, ok := c.PeriphVCC(); ok && pir.Number == vcc.Number {
			return fmt.Errorf("%w: pir_dis_pin and periph_vcc_pin both GPIO%d", ErrInvalid, pir.Number)
		}
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size %d must be >= 1", ErrInvalid, c.QueueSize)
	}
	return nil
}

// PIRDis returns the PIR disconnect pin and whether it is configured.
func (c *Config) PIRDis() (gpio.PinConfig, bool) {
	return c.GPIO.PIRDisPin.pin()
}

// PeriphVCC returns the supply gate pin and whether it is configured.
func (c *Config) PeriphVCC() (gpio.PinConfig, bool) {
	return c.GPIO.PeriphVCCPin.pin()
}

func (p *PinConfig) pin() (gpio.PinConfig, bool) {
	if p == nil || p.Number < 0 {
		return gpio.PinConfig{}, false
	}
	return gpio.PinConfig{Number: p.Number, Inverted: p.Inverted}, true
}
