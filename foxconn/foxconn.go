// Package foxconn overrides the location and firmware capabilities of
// Foxconn MBIM modems (T77W968, T99W175, T99W265 and rebrands).
package foxconn

//go:generate go tool mockgen -destination=mock_foxconn.go -package=foxconn . FirmwareVersionLoader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/capability"
)

// DefaultDataDir holds the carrier mapping files.
const DefaultDataDir = "/usr/share/ModemManager"

const (
	gpsTimeout = 3 * time.Second

	cmdEnableUnmanagedGPS  = `^NV=30007,01,"01"`
	cmdDisableUnmanagedGPS = `^NV=30007,01,"00"`

	// FastbootAT switches the device into fastboot mode.
	FastbootAT = "AT^FASTBOOT"
)

var ErrNoDMSClient = errors.New("no QMI DMS client available")

// DeviceInfo identifies the USB device the modem was probed on.
type DeviceInfo struct {
	Device    string
	Drivers   []string
	Plugin    string
	VendorID  uint16
	ProductID uint16
}

// Settings are the construction settings of a Foxconn modem.
type Settings struct {
	DataNetSupported            bool
	DataTTYSupported            bool
	SIMHotSwapSupported         bool
	SIMHotSwapConfigured        bool
	PeriodicSignalCheckDisabled bool
	GPSUnmanagedAlwaysAllowed   bool

	// CarrierMapping is the carrier configuration mapping file, empty when
	// the device has none.
	CarrierMapping string
}

// VersionType selects which firmware version a FirmwareVersionLoader reads.
type VersionType int

const (
	VersionMCFG VersionType = iota
	VersionMCFGApps
)

func (v VersionType) String() string {
	if v == VersionMCFGApps {
		return "firmware-mcfg-apps"
	}
	return "firmware-mcfg"
}

// FirmwareVersionLoader reads the firmware version over a QMI DMS client.
type FirmwareVersionLoader interface {
	FirmwareVersion(ctx context.Context, t VersionType) (string, error)
}

type featureSupport int

const (
	featureUnknown featureSupport = iota
	featureNotSupported
	featureSupported
)

// Modem is a Foxconn MBIM modem.
type Modem struct {
	info     DeviceInfo
	settings Settings

	primary        bearer.Channel
	gpsPort        string
	locationParent capability.Location
	firmware       FirmwareVersionLoader
	dataDir        string
	log            *slog.Logger

	mu           sync.Mutex
	unmanagedGPS featureSupport
}

var (
	_ capability.Location = (*Modem)(nil)
	_ capability.Firmware = (*Modem)(nil)
)

type Option func(*Modem)

// WithPrimaryPort sets the AT port used for vendor commands.
func WithPrimaryPort(p bearer.Channel) Option {
	return func(m *Modem) { m.primary = p }
}

// WithGPSPort names the NMEA port of the device.
func WithGPSPort(device string) Option {
	return func(m *Modem) { m.gpsPort = device }
}

// WithLocationParent chains the location capability to parent.
func WithLocationParent(parent capability.Location) Option {
	return func(m *Modem) { m.locationParent = parent }
}

func WithFirmwareVersionLoader(l FirmwareVersionLoader) Option {
	return func(m *Modem) { m.firmware = l }
}

// WithDataDir overrides DefaultDataDir.
func WithDataDir(dir string) Option {
	return func(m *Modem) { m.dataDir = dir }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Modem) { m.log = logger }
}

// New returns the Foxconn modem described by info.
func New(info DeviceInfo, opts ...Option) *Modem {
	m := &Modem{info: info, dataDir: DefaultDataDir}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	m.log = m.log.With("device", info.Device)

	m.settings = Settings{
		// MBIM bearers support NET only.
		DataNetSupported:            true,
		DataTTYSupported:            false,
		SIMHotSwapSupported:         true,
		SIMHotSwapConfigured:        false,
		PeriodicSignalCheckDisabled: true,
		GPSUnmanagedAlwaysAllowed:   true,
	}
	if name := carrierMappingFile(info.VendorID, info.ProductID); name != "" {
		m.settings.CarrierMapping = filepath.Join(m.dataDir, name)
	}
	return m
}

func (m *Modem) Info() DeviceInfo {
	return m.info
}

func (m *Modem) Settings() Settings {
	return m.settings
}

func carrierMappingFile(vid, pid uint16) string {
	switch {
	case vid == 0x0489 && (pid == 0xe0b4 || pid == 0xe0b5),
		vid == 0x413c && (pid == 0x81d7 || pid == 0x81e0):
		return "mm-foxconn-t77w968-carrier-mapping.conf"
	case vid == 0x105b && (pid == 0xe0ab || pid == 0xe0b0 || pid == 0xe0b1):
		return "mm-foxconn-t99w175-carrier-mapping.conf"
	default:
		return ""
	}
}

// supportsQDU reports whether the device is a T99W175 or T99W265, which
// compare the apps version and update through MBIM QDU.
func supportsQDU(vid, pid uint16) bool {
	return vid == 0x105b || (vid == 0x0489 && (pid == 0xe0da || pid == 0xe0db))
}

// LoadCapabilities chains to the parent, if any, and adds the unmanaged GPS
// source when the device has both an AT port and a GPS port.
func (m *Modem) LoadCapabilities(ctx context.Context) (capability.LocationSource, error) {
	sources := capability.SourceNone
	if m.locationParent != nil {
		var err error
		if sources, err = m.locationParent.LoadCapabilities(ctx); err != nil {
			return capability.SourceNone, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.primary != nil && m.gpsPort != "" {
		m.unmanagedGPS = featureSupported
		sources |= capability.SourceGPSUnmanaged
	} else {
		m.unmanagedGPS = featureNotSupported
	}
	return sources, nil
}

func (m *Modem) unmanagedGPSSupported(src capability.LocationSource) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unmanagedGPS == featureSupported && src == capability.SourceGPSUnmanaged
}

// EnableGathering chains to the parent first and then turns on the
// unmanaged GPS engine. Other sources are left to the parent.
func (m *Modem) EnableGathering(ctx context.Context, src capability.LocationSource) error {
	if m.locationParent != nil {
		if err := m.locationParent.EnableGathering(ctx, src); err != nil {
			return err
		}
	}
	if !m.unmanagedGPSSupported(src) {
		return nil
	}
	if _, err := m.primary.Command(ctx, cmdEnableUnmanagedGPS, gpsTimeout); err != nil {
		return fmt.Errorf("enable unmanaged GPS: %w", err)
	}
	m.log.Info("Unmanaged GPS enabled", "gps_port", m.gpsPort)
	return nil
}

// DisableGathering turns off the unmanaged GPS engine and then chains to
// the parent.
func (m *Modem) DisableGathering(ctx context.Context, src capability.LocationSource) error {
	if m.unmanagedGPSSupported(src) {
		if _, err := m.primary.Command(ctx, cmdDisableUnmanagedGPS, gpsTimeout); err != nil {
			return fmt.Errorf("disable unmanaged GPS: %w", err)
		}
		m.log.Info("Unmanaged GPS disabled", "gps_port", m.gpsPort)
	}
	if m.locationParent != nil {
		return m.locationParent.DisableGathering(ctx, src)
	}
	return nil
}

// LoadUpdateSettings reads the firmware version and picks the update
// methods supported by the device.
func (m *Modem) LoadUpdateSettings(ctx context.Context) (*capability.UpdateSettings, error) {
	if m.firmware == nil {
		return nil, fmt.Errorf("unable to load version info: %w", ErrNoDMSClient)
	}

	qdu := supportsQDU(m.info.VendorID, m.info.ProductID)
	versionType := VersionMCFG
	if qdu {
		versionType = VersionMCFGApps
	}
	version, err := m.firmware.FirmwareVersion(ctx, versionType)
	if err != nil {
		return nil, fmt.Errorf("load %s version: %w", versionType, err)
	}

	settings := &capability.UpdateSettings{Version: version}
	if qdu {
		settings.Methods = capability.UpdateMBIMQDU
	} else {
		settings.Methods = capability.UpdateFastboot | capability.UpdateQMIPDC
		settings.FastbootAT = FastbootAT
	}
	return settings, nil
}
