package capability

import (
	"log/slog"
	"slices"
	"sync"
)

type CallDirection int

const (
	DirectionUnknown CallDirection = iota
	DirectionIncoming
	DirectionOutgoing
)

func (d CallDirection) String() string {
	switch d {
	case DirectionIncoming:
		return "incoming"
	case DirectionOutgoing:
		return "outgoing"
	default:
		return "unknown"
	}
}

type CallState int

const (
	StateUnknown CallState = iota
	StateDialing
	StateRingingOut
	StateRingingIn
	StateActive
	StateHeld
	StateWaiting
	StateTerminated
)

var callStateNames = [...]string{
	StateUnknown:    "unknown",
	StateDialing:    "dialing",
	StateRingingOut: "ringing-out",
	StateRingingIn:  "ringing-in",
	StateActive:     "active",
	StateHeld:       "held",
	StateWaiting:    "waiting",
	StateTerminated: "terminated",
}

func (s CallState) String() string {
	if s < 0 || int(s) >= len(callStateNames) {
		return "unknown"
	}
	return callStateNames[s]
}

type CallStateReason int

const (
	ReasonUnknown CallStateReason = iota
	ReasonOutgoingStarted
	ReasonIncomingNew
	ReasonAccepted
	ReasonTerminated
	ReasonRefusedOrBusy
	ReasonError
	ReasonAudioSetupFailed
)

var reasonNames = [...]string{
	ReasonUnknown:          "unknown",
	ReasonOutgoingStarted:  "outgoing-started",
	ReasonIncomingNew:      "incoming-new",
	ReasonAccepted:         "accepted",
	ReasonTerminated:       "terminated",
	ReasonRefusedOrBusy:    "refused-or-busy",
	ReasonError:            "error",
	ReasonAudioSetupFailed: "audio-setup-failed",
}

func (r CallStateReason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// StateChange is handed to call observers on every transition.
type StateChange struct {
	Old    CallState
	New    CallState
	Reason CallStateReason
}

// BaseCall tracks the state of a single voice call. Vendor calls embed it and
// drive the transitions from their unsolicited handlers.
type BaseCall struct {
	Log *slog.Logger

	direction CallDirection
	number    string

	mu        sync.Mutex
	state     CallState
	reason    CallStateReason
	observers []func(StateChange)
}

// NewBaseCall returns a call in StateUnknown. A nil logger uses
// slog.Default.
func NewBaseCall(direction CallDirection, number string, logger *slog.Logger) *BaseCall {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseCall{
		Log:       logger,
		direction: direction,
		number:    number,
	}
}

func (c *BaseCall) Direction() CallDirection {
	return c.direction
}

func (c *BaseCall) Number() string {
	return c.number
}

// State returns the current state and the reason of the last transition.
func (c *BaseCall) State() (CallState, CallStateReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.reason
}

// Observe registers f to be called after every transition.
func (c *BaseCall) Observe(f func(StateChange)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, f)
}

// ChangeState moves the call to state. Setting the current state again is
// a no-op.
func (c *BaseCall) ChangeState(state CallState, reason CallStateReason) {
	c.mu.Lock()
	c.changeLocked(state, reason)
}

// Transition moves the call from from to to, and reports whether the call
// was in from.
func (c *BaseCall) Transition(from, to CallState, reason CallStateReason) bool {
	c.mu.Lock()
	if c.state != from {
		c.mu.Unlock()
		return false
	}
	c.changeLocked(to, reason)
	return true
}

// changeLocked is called with mu held and releases it before the observers
// run.
func (c *BaseCall) changeLocked(state CallState, reason CallStateReason) {
	old := c.state
	if old == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.reason = reason
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	c.Log.Info("Call state changed",
		"number", c.number, "old", old, "new", state, "reason", reason)
	change := StateChange{Old: old, New: state, Reason: reason}
	for _, f := range observers {
		f(change)
	}
}
