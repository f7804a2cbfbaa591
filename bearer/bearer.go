// Package bearer holds the contracts shared by the vendor bearer plugins and
// the daemon that drives them: AT channels and ports, bearer properties, IP
// configuration records and the connect result.
package bearer

//go:generate go tool mockgen -destination=mock_bearer.go -package=bearer . Channel,Port,Modem

import (
	"context"
	"time"
)

// DefaultConnectionTimeout bounds every AT command issued while a bearer
// connects or disconnects.
const DefaultConnectionTimeout = 180 * time.Second

// Channel dispatches AT commands. The command is given without the "AT"
// prefix; the reply is the text received before the final result code.
type Channel interface {
	Command(ctx context.Context, cmd string, timeout time.Duration) (string, error)
}

// Port is an AT channel that can be held for the lifetime of a connection
// attempt.
type Port interface {
	Channel
	Acquire() error
	Release()
	Device() string
}

// Modem exposes the AT ports of one device.
type Modem interface {
	// PrimaryPort returns the control port, or nil when there is none.
	PrimaryPort() Port
	// BestDataPort returns the preferred port for data setup, or nil.
	BestDataPort() Port
}

// Properties is the bearer configuration captured when a connection starts.
type Properties struct {
	APN      string `json:"apn" yaml:"apn"`
	User     string `json:"user,omitempty" yaml:"user"`
	Password string `json:"-" yaml:"password"`
}

// Ports is a fixed pair of ports. Data may be nil, in which case the primary
// port also carries data setup.
type Ports struct {
	Primary Port
	Data    Port
}

func (p Ports) PrimaryPort() Port {
	return p.Primary
}

func (p Ports) BestDataPort() Port {
	return p.Data
}

// DataPort returns the best data port of m, falling back to its primary port.
func DataPort(m Modem) Port {
	if p := m.BestDataPort(); p != nil {
		return p
	}
	return m.PrimaryPort()
}
