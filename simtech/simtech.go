// Package simtech overrides the voice capability of SimTech QMI modems: the
// voice support probe, +CLCC call list reporting and the PCM audio channel
// of calls.
package simtech

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/capability"
	"i4.energy/across/mmplugins/modem"
	"i4.energy/across/mmplugins/sequence"
)

const (
	checkTimeout  = 10 * time.Second
	eventsTimeout = 5 * time.Second
)

var ErrNoPrimaryPort = errors.New("no primary AT port")

// Modem is the voice capability of a SimTech modem.
type Modem struct {
	primary    bearer.Channel
	parent     capability.Voice
	callParent capability.CallEvents
	log        *slog.Logger
	pcmAudio   atomic.Bool
}

var _ capability.Voice = (*Modem)(nil)

type Option func(*Modem)

// WithParent chains the unsolicited event enable to parent.
func WithParent(parent capability.Voice) Option {
	return func(m *Modem) { m.parent = parent }
}

// WithCallParent chains the unsolicited handlers of created calls to parent.
func WithCallParent(parent capability.CallEvents) Option {
	return func(m *Modem) { m.callParent = parent }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Modem) { m.log = logger }
}

// New returns the voice capability driving primary. primary may be nil when
// the device has no AT port; every AT operation then fails with
// ErrNoPrimaryPort.
func New(primary bearer.Channel, opts ...Option) *Modem {
	m := &Modem{primary: primary}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m
}

// PCMAudio reports whether the last support check found PCM audio over TTY.
func (m *Modem) PCMAudio() bool {
	return m.pcmAudio.Load()
}

// CheckSupport probes +VMUTE=? and then +CPCMREG=?. A modem error to the
// first means no voice support; the second only decides PCM audio support.
// Any other error aborts the probe.
func (m *Modem) CheckSupport(ctx context.Context) (bool, error) {
	if m.primary == nil {
		return false, ErrNoPrimaryPort
	}

	var supported bool
	err := sequence.RunCommands(ctx, m.primary, []sequence.Command{
		{
			Cmd:     "+VMUTE=?",
			Timeout: checkTimeout,
			Process: func(_ string, err error) (bool, error) {
				if err == nil {
					return false, nil
				}
				if !modem.IsCommandError(err) {
					m.log.Debug("Got non-AT error checking VMUTE", "error", err)
					return false, err
				}
				return true, nil
			},
		},
		{
			Cmd:     "+CPCMREG=?",
			Timeout: checkTimeout,
			Process: func(_ string, err error) (bool, error) {
				if err != nil && !modem.IsCommandError(err) {
					m.log.Debug("Got non-AT error checking PCMREG", "error", err)
					return false, err
				}
				supported = true
				m.pcmAudio.Store(err == nil)
				m.log.Debug("PCM audio support checked", "supported", err == nil)
				return true, nil
			},
		},
	})
	if err != nil {
		return false, err
	}
	return supported, nil
}

// EnableUnsolicitedEvents chains to the parent and then turns on +CLCC call
// list reporting.
func (m *Modem) EnableUnsolicitedEvents(ctx context.Context) error {
	if m.parent != nil {
		if err := m.parent.EnableUnsolicitedEvents(ctx); err != nil {
			return err
		}
	}
	return m.command(ctx, "+CLCC=1")
}

// DisableUnsolicitedEvents turns off +CLCC call list reporting. The parent
// is not consulted.
func (m *Modem) DisableUnsolicitedEvents(ctx context.Context) error {
	return m.command(ctx, "+CLCC=0")
}

func (m *Modem) command(ctx context.Context, cmd string) error {
	if m.primary == nil {
		return ErrNoPrimaryPort
	}
	_, err := m.primary.Command(ctx, cmd, eventsTimeout)
	return err
}

// CreateCall returns a call on the primary port carrying the current PCM
// audio support.
func (m *Modem) CreateCall(direction capability.CallDirection, number string) *Call {
	return &Call{
		BaseCall: capability.NewBaseCall(direction, number, m.log.With("call", number)),
		primary:  m.primary,
		parent:   m.callParent,
		pcmAudio: m.pcmAudio.Load(),
	}
}
