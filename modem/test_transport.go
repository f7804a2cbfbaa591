package modem

import (
	"context"
	"io"
	"strings"
	"sync"

	"i4.energy/across/mmplugins/at"
)

// TestTransport is a test helper that simulates a blocking transport using channels.
// This is needed because the Loop's scanner goroutine continuously reads from the transport,
// and we need reads to block until data is available (like a real serial port would).
//
// Every written command line is recorded and, when a responder is set, its
// reply is queued for reading.
type TestTransport struct {
	mu        sync.Mutex
	readChan  chan []byte
	closed    bool
	written   []string
	responder func(cmd string) string
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan: make(chan []byte, 64),
	}
}

// Respond installs f to produce the raw reply for every written command.
// An empty reply queues nothing.
func (t *TestTransport) Respond(f func(cmd string) string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responder = f
}

// Written returns the command lines written so far, without the trailing CR.
func (t *TestTransport) Written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.written...)
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	cmd := strings.TrimRight(string(p), "\r\n")
	t.written = append(t.written, cmd)
	if t.responder != nil {
		if reply := t.responder(cmd); reply != "" {
			t.readChan <- []byte(reply)
		}
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	data, ok := <-t.readChan
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendData queues data to be read by the transport.
// This simulates receiving data from the modem.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// Script returns a responder answering the commands found in replies with
// their canned text and every other command with a plain OK.
func Script(replies map[string]string) func(string) string {
	return func(cmd string) string {
		if reply, ok := replies[cmd]; ok {
			return reply
		}
		return at.OK + at.CRLF
	}
}

// TestDialer hands out a fixed TestTransport.
type TestDialer struct {
	Transport *TestTransport
}

func (d TestDialer) Dial(ctx context.Context) (Transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.Transport, nil
}
