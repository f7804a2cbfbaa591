package simtech

import (
	"context"
	"strings"

	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/capability"
)

var clccStatNames = [...]string{
	0: "active",
	1: "held",
	2: "dialing (MO)",
	3: "alerting (MO)",
	4: "incoming (MT)",
	5: "waiting (MT)",
	6: "disconnect",
}

// Call is a voice call on a SimTech modem. Only a single call is tracked:
// every +CLCC line is applied to it regardless of its id.
type Call struct {
	*capability.BaseCall

	primary  bearer.Channel
	parent   capability.CallEvents
	pcmAudio bool
}

var (
	_ capability.CallEvents = (*Call)(nil)
	_ capability.Audio      = (*Call)(nil)
)

// PCMAudio reports whether the call streams audio over the TTY.
func (c *Call) PCMAudio() bool {
	return c.pcmAudio
}

// SetupAudioChannel enables PCM audio over the TTY. It does nothing when the
// modem has no PCM audio support.
func (c *Call) SetupAudioChannel(ctx context.Context) error {
	return c.audioChannelCommand(ctx, "+CPCMREG=1", "enabling")
}

// CleanupAudioChannel disables PCM audio over the TTY. It does nothing when
// the modem has no PCM audio support.
func (c *Call) CleanupAudioChannel(ctx context.Context) error {
	return c.audioChannelCommand(ctx, "+CPCMREG=0", "disabling")
}

func (c *Call) audioChannelCommand(ctx context.Context, cmd, what string) error {
	if !c.pcmAudio {
		c.Log.Debug("PCM audio not supported, skipping", "action", what)
		return nil
	}
	if c.primary == nil {
		return ErrNoPrimaryPort
	}
	c.Log.Debug("PCM audio supported", "action", what)
	if _, err := c.primary.Command(ctx, cmd, eventsTimeout); err != nil {
		c.Log.Debug("Audio streaming command failed", "action", what, "error", err)
		return err
	}
	c.Log.Debug("PCM audio command completed", "action", what)
	return nil
}

// SetupUnsolicitedEvents chains to the parent and then registers the +CLCC
// and VOICE CALL handlers with reg. Nothing is registered when the modem has
// no primary port.
func (c *Call) SetupUnsolicitedEvents(reg capability.IndicationRegistry) error {
	if c.parent != nil {
		if err := c.parent.SetupUnsolicitedEvents(reg); err != nil {
			return err
		}
	}
	if c.primary == nil {
		return nil
	}
	c.Log.Debug("Adding +CLCC and VOICE CALL handlers")
	reg.AddIndication(clccPrefix, c.handleCLCC)
	reg.AddIndication(voiceCallPrefix, c.handleVoiceCall)
	return nil
}

// CleanupUnsolicitedEvents removes the handlers and chains to the parent.
// The handlers are removed even if the parent fails.
func (c *Call) CleanupUnsolicitedEvents(reg capability.IndicationRegistry) error {
	var parentErr error
	if c.parent != nil {
		parentErr = c.parent.CleanupUnsolicitedEvents(reg)
	}
	if c.primary != nil {
		c.Log.Debug("Removing +CLCC and VOICE CALL handlers")
		reg.RemoveIndication(clccPrefix)
		reg.RemoveIndication(voiceCallPrefix)
	}
	return parentErr
}

func (c *Call) handleVoiceCall(line string) {
	c.Log.Debug("Received voice call URC",
		"argument", strings.TrimSpace(strings.TrimPrefix(line, voiceCallPrefix)))
}

func (c *Call) handleCLCC(line string) {
	entry, err := ParseCLCC(line)
	if err != nil {
		c.Log.Debug("Ignoring call list line", "error", err)
		return
	}
	if int(entry.Stat) < len(clccStatNames) {
		c.Log.Debug("SimTech call state", "id", entry.ID, "state", clccStatNames[entry.Stat])
	} else {
		c.Log.Debug("SimTech call state unknown", "id", entry.ID, "stat", entry.Stat)
	}

	switch entry.Stat {
	case 0:
		c.Transition(capability.StateRingingOut, capability.StateActive, capability.ReasonAccepted)
	case 3:
		c.Transition(capability.StateDialing, capability.StateRingingOut, capability.ReasonOutgoingStarted)
	}
}
