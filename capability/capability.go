// Package capability defines the optional modem capabilities a vendor plugin
// may override: location gathering, firmware update settings, voice support
// and call events. Vendor implementations chain to a parent implementation
// when one is configured.
package capability

//go:generate go tool mockgen -destination=mock_capability.go -package=capability . Location,Firmware,Voice,CallEvents

import (
	"context"
	"strings"
)

// IndicationRegistry registers handlers for unsolicited lines by prefix.
// *modem.Dispatcher satisfies it.
type IndicationRegistry interface {
	AddIndication(prefix string, h func(line string))
	RemoveIndication(prefix string)
}

// LocationSource is a bitmask of location sources.
type LocationSource uint32

const (
	SourceNone      LocationSource = 0
	Source3GPPLACCI LocationSource = 1 << (iota - 1)
	SourceGPSRaw
	SourceGPSNMEA
	SourceCDMABS
	SourceGPSUnmanaged
	SourceAGPSMSA
	SourceAGPSMSB
)

var sourceNames = []struct {
	src  LocationSource
	name string
}{
	{Source3GPPLACCI, "3gpp-lac-ci"},
	{SourceGPSRaw, "gps-raw"},
	{SourceGPSNMEA, "gps-nmea"},
	{SourceCDMABS, "cdma-bs"},
	{SourceGPSUnmanaged, "gps-unmanaged"},
	{SourceAGPSMSA, "agps-msa"},
	{SourceAGPSMSB, "agps-msb"},
}

func (s LocationSource) String() string {
	if s == SourceNone {
		return "none"
	}
	var names []string
	for _, n := range sourceNames {
		if s&n.src != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Has reports whether every bit of src is set in s.
func (s LocationSource) Has(src LocationSource) bool {
	return src != SourceNone && s&src == src
}

// Location loads and toggles location sources.
type Location interface {
	LoadCapabilities(ctx context.Context) (LocationSource, error)
	EnableGathering(ctx context.Context, src LocationSource) error
	DisableGathering(ctx context.Context, src LocationSource) error
}

// UpdateMethod is a bitmask of firmware update methods.
type UpdateMethod uint32

const (
	UpdateNone     UpdateMethod = 0
	UpdateFastboot UpdateMethod = 1 << (iota - 1)
	UpdateQMIPDC
	UpdateMBIMQDU
	UpdateFirehose
)

func (m UpdateMethod) String() string {
	if m == UpdateNone {
		return "none"
	}
	var names []string
	if m&UpdateFastboot != 0 {
		names = append(names, "fastboot")
	}
	if m&UpdateQMIPDC != 0 {
		names = append(names, "qmi-pdc")
	}
	if m&UpdateMBIMQDU != 0 {
		names = append(names, "mbim-qdu")
	}
	if m&UpdateFirehose != 0 {
		names = append(names, "firehose")
	}
	return strings.Join(names, "|")
}

// UpdateSettings describes how the firmware of a device can be updated.
type UpdateSettings struct {
	Methods UpdateMethod `json:"methods"`
	Version string       `json:"version"`
	// FastbootAT is the AT command switching the device to fastboot mode.
	FastbootAT string `json:"fastboot_at,omitempty"`
}

// Firmware loads firmware update settings.
type Firmware interface {
	LoadUpdateSettings(ctx context.Context) (*UpdateSettings, error)
}

// Voice probes and toggles voice call support.
type Voice interface {
	CheckSupport(ctx context.Context) (bool, error)
	EnableUnsolicitedEvents(ctx context.Context) error
	DisableUnsolicitedEvents(ctx context.Context) error
}

// CallEvents registers the unsolicited handlers of a call.
type CallEvents interface {
	SetupUnsolicitedEvents(reg IndicationRegistry) error
	CleanupUnsolicitedEvents(reg IndicationRegistry) error
}

// Audio sets up the audio path of a call.
type Audio interface {
	SetupAudioChannel(ctx context.Context) error
	CleanupAudioChannel(ctx context.Context) error
}
