package modem

//go:generate go tool mockgen -destination=mock_transport.go -package=modem . Transport,Dialer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/warthog618/modem/trace"
	"go.bug.st/serial"
)

// Transport represents an established, bidirectional byte stream to an AT port.
//
// A Transport is assumed to be already connected and ready for use. It provides
// the low-level I/O primitives required to send AT commands and receive responses.
// Typical implementations include serial ports, TCP connections to emulators,
// or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to an AT port.
//
// Dialer abstracts how the port connection is created (for example, via a
// serial port, TCP-based emulator, or test double) and is intended to be used
// during modem construction only. Once a Transport is obtained, the Dialer is
// no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens an AT port over a tty using go.bug.st/serial.
type SerialDialer struct {
	PortName string
	// Mode defaults to 115200 8N1 when nil.
	Mode *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("modem: nil context")
	}
	if d.PortName == "" {
		return nil, errors.New("modem: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 115200,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("modem: open %s: %w", d.PortName, err)
	}
	return port, nil
}

// tracedTransport logs the traffic of the wrapped transport.
type tracedTransport struct {
	io.ReadWriter
	closer io.Closer
}

func (t *tracedTransport) Close() error {
	return t.closer.Close()
}

func newTracedTransport(t Transport, logger *slog.Logger) Transport {
	l := slog.NewLogLogger(logger.Handler(), slog.LevelDebug)
	return &tracedTransport{
		ReadWriter: trace.New(t, trace.WithLogger(l)),
		closer:     t,
	}
}
