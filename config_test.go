package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/mtk"
	"i4.energy/across/mmplugins/netconf"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(WithDefaults())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := &Config{
		BindAddress:       "0.0.0.0:8080",
		PrimaryPort:       "/dev/ttyUSB0",
		BaudRate:          115200,
		LogLevel:          "info",
		ActivationDelay:   Duration(mtk.DefaultActivationDelay),
		ConnectionTimeout: Duration(bearer.DefaultConnectionTimeout),
		ResolvDir:         netconf.DefaultResolvDir,
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mmplugins.yaml")
	data := `
primary_port: /dev/ttyUSB2
data_port: /dev/ttyUSB3
bearer:
  apn: internet.example
  user: alice
  password: secret
activation_delay: 500ms
connection_timeout: 1m
apply_netconf: true
vendor: foxconn
gps_port: /dev/ttyUSB1
vendor_id: 4187
product_id: 57515
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(WithDefaults(), WithFile(path))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := &Config{
		BindAddress:       "0.0.0.0:8080",
		PrimaryPort:       "/dev/ttyUSB2",
		DataPort:          "/dev/ttyUSB3",
		BaudRate:          115200,
		LogLevel:          "info",
		Bearer:            bearer.Properties{APN: "internet.example", User: "alice", Password: "secret"},
		ActivationDelay:   Duration(500 * time.Millisecond),
		ConnectionTimeout: Duration(time.Minute),
		ApplyNetconf:      true,
		ResolvDir:         netconf.DefaultResolvDir,
		Vendor:            VendorFoxconn,
		GPSPort:           "/dev/ttyUSB1",
		VendorID:          0x105b,
		ProductID:         0xe0ab,
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestWithFileErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("activation_delay: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.yaml")},
		{"invalid duration", invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(WithDefaults(), WithFile(tt.path)); err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
		})
	}

	t.Run("empty path", func(t *testing.T) {
		if _, err := LoadConfig(WithDefaults(), WithFile("")); err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
	})
}

func TestWithEnv(t *testing.T) {
	t.Setenv("PRIMARY_PORT", "/dev/ttyACM0")
	t.Setenv("BAUD_RATE", "921600")
	t.Setenv("APN", "iot")
	t.Setenv("APN_USER", "bob")
	t.Setenv("ACTIVATION_DELAY", "10s")
	t.Setenv("APPLY_NETCONF", "true")
	t.Setenv("VENDOR", "simtech")

	config, err := LoadConfig(WithDefaults(), WithEnv())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.PrimaryPort != "/dev/ttyACM0" {
		t.Errorf("PrimaryPort = %q, want /dev/ttyACM0", config.PrimaryPort)
	}
	if config.BaudRate != 921600 {
		t.Errorf("BaudRate = %d, want 921600", config.BaudRate)
	}
	if diff := cmp.Diff(bearer.Properties{APN: "iot", User: "bob"}, config.Bearer); diff != "" {
		t.Errorf("Bearer mismatch (-want +got):\n%s", diff)
	}
	if config.ActivationDelay.Duration() != 10*time.Second {
		t.Errorf("ActivationDelay = %s, want 10s", config.ActivationDelay.Duration())
	}
	if !config.ApplyNetconf {
		t.Error("ApplyNetconf = false, want true")
	}
	if config.Vendor != VendorSimTech {
		t.Errorf("Vendor = %q, want %q", config.Vendor, VendorSimTech)
	}
}

func TestWithFlags(t *testing.T) {
	newFlags := func() *flag.FlagSet {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.String("primary-port", "/dev/ttyUSB0", "")
		fs.String("apn", "", "")
		fs.String("activation-delay", "", "")
		fs.Bool("apply-netconf", false, "")
		fs.String("vendor", "", "")
		return fs
	}

	t.Run("overrides", func(t *testing.T) {
		fs := newFlags()
		if err := fs.Parse([]string{"-apn", "flag.apn", "-activation-delay", "1s", "-apply-netconf", "-vendor", "simtech"}); err != nil {
			t.Fatal(err)
		}
		t.Setenv("APN", "env.apn")

		config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(fs))
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if config.Bearer.APN != "flag.apn" {
			t.Errorf("APN = %q, want flag.apn", config.Bearer.APN)
		}
		if config.ActivationDelay.Duration() != time.Second {
			t.Errorf("ActivationDelay = %s, want 1s", config.ActivationDelay.Duration())
		}
		if !config.ApplyNetconf {
			t.Error("ApplyNetconf = false, want true")
		}
		// Unset flags keep the previous value.
		if config.PrimaryPort != "/dev/ttyUSB0" {
			t.Errorf("PrimaryPort = %q, want default", config.PrimaryPort)
		}
	})

	t.Run("invalid activation delay", func(t *testing.T) {
		fs := newFlags()
		if err := fs.Parse([]string{"-activation-delay", "later"}); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(WithDefaults(), WithFlags(fs)); err == nil {
			t.Fatal("LoadConfig() succeeded, want error")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no primary port", func(c *Config) { c.PrimaryPort = "" }},
		{"zero baud rate", func(c *Config) { c.BaudRate = 0 }},
		{"negative activation delay", func(c *Config) { c.ActivationDelay = Duration(-time.Second) }},
		{"unknown vendor", func(c *Config) { c.Vendor = "quectel" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modify := func(c *Config) error {
				tt.modify(c)
				return nil
			}
			if _, err := LoadConfig(WithDefaults(), modify); err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
		})
	}
}

func TestDurationYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Delay Duration `yaml:"delay"`
	}{Duration(1500 * time.Millisecond)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(out), "delay: 1.5s\n"; got != want {
		t.Errorf("Marshal() = %q, want %q", got, want)
	}
}
