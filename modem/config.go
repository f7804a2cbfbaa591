package modem

import (
	"log/slog"
	"time"
)

// Config holds the settings of a single AT port.
type Config struct {
	Dialer Dialer
	// Device is the name reported by Modem.Device, usually the tty path.
	Device       string
	SimPIN       string
	SkipSIMCheck bool
	ATTimeout    time.Duration
	InitTimeout  time.Duration
	// URCBuffer is the capacity of the unsolicited line channel.
	URCBuffer int
	// Trace logs every byte read from and written to the port.
	Trace  bool
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.ATTimeout == 0 {
		c.ATTimeout = 5 * time.Second
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = 30 * time.Second
	}
	if c.URCBuffer == 0 {
		c.URCBuffer = 100
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder with an empty Config.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithDevice(name string) *ConfigBuilder {
	b.config.Device = name
	return b
}

func (b *ConfigBuilder) WithSimPIN(pin string) *ConfigBuilder {
	b.config.SimPIN = pin
	return b
}

// WithoutSIMCheck skips the SIM status query during initialization. Secondary
// data ports share the SIM of the primary port and need no check of their own.
func (b *ConfigBuilder) WithoutSIMCheck() *ConfigBuilder {
	b.config.SkipSIMCheck = true
	return b
}

func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.ATTimeout = d
	return b
}

func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.config.InitTimeout = d
	return b
}

func (b *ConfigBuilder) WithURCBuffer(n int) *ConfigBuilder {
	b.config.URCBuffer = n
	return b
}

func (b *ConfigBuilder) WithTrace(enabled bool) *ConfigBuilder {
	b.config.Trace = enabled
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

// Build validates the collected settings and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
