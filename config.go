package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/mtk"
	"i4.energy/across/mmplugins/netconf"
)

// Vendor capability sets the daemon can drive next to the MTK bearer.
const (
	VendorNone    = ""
	VendorSimTech = "simtech"
	VendorFoxconn = "foxconn"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `yaml:"bind_address"`
	// PrimaryPort is the path to the modem's control port (e.g. "/dev/ttyUSB2")
	PrimaryPort string `yaml:"primary_port"`
	// DataPort is the optional port used for data setup. The primary port
	// is used when empty.
	DataPort string `yaml:"data_port"`
	// BaudRate is the baud rate for serial communication with the modem (e.g. 115200)
	BaudRate int `yaml:"baud_rate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
	// SimPIN is the SIM card PIN code
	SimPIN string `yaml:"sim_pin"`
	// Trace logs every byte exchanged with the modem ports
	Trace bool `yaml:"trace"`

	// Bearer holds the APN and its credentials
	Bearer bearer.Properties `yaml:"bearer"`
	// ActivationDelay bounds the wait for network registration before the
	// APN is activated
	ActivationDelay Duration `yaml:"activation_delay"`
	// ConnectionTimeout bounds every AT command of a connect or disconnect
	ConnectionTimeout Duration `yaml:"connection_timeout"`

	// ApplyNetconf configures the data interface once connected
	ApplyNetconf bool `yaml:"apply_netconf"`
	// ResolvDir receives the per-interface resolv.conf files
	ResolvDir string `yaml:"resolv_dir"`

	// Vendor selects extra vendor capabilities ("", "simtech", "foxconn")
	Vendor string `yaml:"vendor"`
	// GPSPort is the NMEA port of a Foxconn modem
	GPSPort string `yaml:"gps_port"`
	// VendorID and ProductID identify a Foxconn modem
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
}

// Duration is a time.Duration written as a string ("3s") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
// and validates the result
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.PrimaryPort == "" {
		return fmt.Errorf("primary port is required")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if c.ActivationDelay < 0 {
		return fmt.Errorf("negative activation delay %s", c.ActivationDelay.Duration())
	}
	switch c.Vendor {
	case VendorNone, VendorSimTech, VendorFoxconn:
	default:
		return fmt.Errorf("unknown vendor %q", c.Vendor)
	}
	return nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.PrimaryPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.ActivationDelay = Duration(mtk.DefaultActivationDelay)
		c.ConnectionTimeout = Duration(bearer.DefaultConnectionTimeout)
		c.ResolvDir = netconf.DefaultResolvDir
		return nil
	}
}

// WithFile loads configuration from a YAML file. Keys missing from the
// file keep their current value. An empty path is ignored.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if port := os.Getenv("PRIMARY_PORT"); port != "" {
			c.PrimaryPort = port
		}

		if port := os.Getenv("DATA_PORT"); port != "" {
			c.DataPort = port
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if simPIN := os.Getenv("SIM_PIN"); simPIN != "" {
			c.SimPIN = simPIN
		}

		if apn := os.Getenv("APN"); apn != "" {
			c.Bearer.APN = apn
		}

		if user := os.Getenv("APN_USER"); user != "" {
			c.Bearer.User = user
		}

		if password := os.Getenv("APN_PASSWORD"); password != "" {
			c.Bearer.Password = password
		}

		if delay := os.Getenv("ACTIVATION_DELAY"); delay != "" {
			if d, err := time.ParseDuration(delay); err == nil {
				c.ActivationDelay = Duration(d)
			}
		}

		if apply := os.Getenv("APPLY_NETCONF"); apply != "" {
			if b, err := strconv.ParseBool(apply); err == nil {
				c.ApplyNetconf = b
			}
		}

		if dir := os.Getenv("RESOLV_DIR"); dir != "" {
			c.ResolvDir = dir
		}

		if vendor := os.Getenv("VENDOR"); vendor != "" {
			c.Vendor = vendor
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var err error
		fSet.Visit(func(f *flag.Flag) {
			value := f.Value.String()
			switch f.Name {
			case "bind-address":
				c.BindAddress = value
			case "primary-port":
				c.PrimaryPort = value
			case "data-port":
				c.DataPort = value
			case "baud-rate":
				if b, perr := strconv.Atoi(value); perr == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = value
			case "sim-pin":
				c.SimPIN = value
			case "apn":
				c.Bearer.APN = value
			case "user":
				c.Bearer.User = value
			case "password":
				c.Bearer.Password = value
			case "activation-delay":
				d, perr := time.ParseDuration(value)
				if perr != nil {
					err = fmt.Errorf("invalid -activation-delay: %w", perr)
					return
				}
				c.ActivationDelay = Duration(d)
			case "trace":
				c.Trace = value == "true"
			case "apply-netconf":
				c.ApplyNetconf = value == "true"
			case "resolv-dir":
				c.ResolvDir = value
			case "vendor":
				c.Vendor = value
			case "gps-port":
				c.GPSPort = value
			}
		})
		return err
	}
}
