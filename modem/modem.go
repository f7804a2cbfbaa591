package modem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"i4.energy/across/mmplugins/at"
)

const (
	simPollInterval = 500 * time.Millisecond
	simReadyTimeout = 30 * time.Second
)

// initCommands bring a fresh port into the state the Loop expects: the port
// answers, echo is off and the modem reports errors verbosely.
var initCommands = []struct {
	cmd  string
	what string
}{
	{at.CmdAt, "modem not responding"},
	{at.CmdEchoOff, "disable echo"},
	{at.CmdVerboseErrors, "enable verbose errors"},
}

// Modem is one AT port of a cellular modem. Loop is the only reader of the
// transport; Command hands requests to it one at a time and unsolicited
// lines are published on the URC channel.
type Modem struct {
	transport Transport
	config    Config
	log       *slog.Logger

	closed      atomic.Bool
	loopRunning atomic.Bool
	// acquired marks the port as held by a connection attempt
	acquired atomic.Bool

	// sem admits one Command at a time
	sem      chan struct{}
	urc      chan string
	requests chan *request

	loopCtx    context.Context
	loopCancel context.CancelFunc
}

type request struct {
	ctx   context.Context
	line  string
	reply chan reply
}

type reply struct {
	resp string
	err  error
}

// inflight is the command the Loop collects reply lines for.
type inflight struct {
	req   *request
	lines []string
}

// done hands the outcome to the waiting caller. It is a no-op on nil.
func (f *inflight) done(resp string, err error) {
	if f == nil {
		return
	}
	f.req.reply <- reply{resp: resp, err: err}
}

// New dials the port described by config and initializes it. The port is
// ready for Command once Loop runs.
func New(ctx context.Context, config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}
	if config.Trace {
		transport = newTracedTransport(transport, config.Logger.With("device", config.Device))
	}

	m := &Modem{
		transport: transport,
		config:    config,
		log:       config.Logger,
		sem:       make(chan struct{}, 1),
		urc:       make(chan string, config.URCBuffer),
		requests:  make(chan *request),
	}
	m.loopCtx, m.loopCancel = context.WithCancel(ctx)

	initCtx, cancel := context.WithTimeout(ctx, config.InitTimeout)
	defer cancel()
	if err := m.init(initCtx); err != nil {
		m.loopCancel()
		transport.Close()
		return nil, fmt.Errorf("initialize port %s: %w", config.Device, err)
	}
	return m, nil
}

// Loop serves the port until ctx is cancelled, the port is closed or the
// transport fails. It writes queued commands, collects their replies and
// forwards unsolicited lines. Data lines that arrive while no command is in
// flight (+CGEV:, +CLCC: ...) count as unsolicited too.
func (m *Modem) Loop(ctx context.Context) error {
	if !m.loopRunning.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer m.loopRunning.Store(false)

	ctx, cancel := mergeCancel(ctx, m.loopCtx)
	defer cancel()

	lines, readErr := scanLines(ctx, m.transport)
	var cur *inflight

	for {
		select {
		case <-ctx.Done():
			cur.done("", ctx.Err())
			return ctx.Err()

		case req := <-m.requests:
			// The previous caller gave up waiting; its late reply is dropped.
			cur.done("", fmt.Errorf("command superseded: %w", context.DeadlineExceeded))
			cur = &inflight{req: req}
			if _, err := m.transport.Write([]byte(req.line + "\r")); err != nil {
				cur.done("", fmt.Errorf("write %q: %w", req.line, err))
				cur = nil
			}

		case line, ok := <-lines:
			if !ok {
				var err error = io.EOF
				select {
				case rerr := <-readErr:
					err = fmt.Errorf("scanner error: %w", rerr)
				default:
				}
				cur.done("", err)
				return err
			}
			cur = m.handleLine(cur, line)
			if cur != nil && cur.req.ctx.Err() != nil {
				cur.done("", fmt.Errorf("command timeout: %w", cur.req.ctx.Err()))
				cur = nil
			}

		case rerr := <-readErr:
			err := fmt.Errorf("scanner error: %w", rerr)
			cur.done("", err)
			return err
		}
	}
}

// handleLine routes one line read from the port and returns the command that
// is still waiting for its final result, if any.
func (m *Modem) handleLine(cur *inflight, line string) *inflight {
	switch at.Classify(line) {
	case at.TypeURC:
		m.dispatchURC(line)

	case at.TypeData:
		if cur == nil {
			m.dispatchURC(line)
			break
		}
		cur.lines = append(cur.lines, line)

	case at.TypePrompt:
		if cur != nil {
			cur.done(strings.Join(append(cur.lines, line), "\n"), nil)
			return nil
		}

	case at.TypeFinal:
		if cur == nil {
			m.log.Debug("Dropping orphaned final result", "line", line)
			break
		}
		resp := strings.Join(cur.lines, "\n")
		if at.IsSuccess(line) {
			cur.done(resp, nil)
		} else {
			cur.done(resp, &CommandError{Command: cur.req.line, Result: line, Response: resp})
		}
		return nil
	}
	return cur
}

// scanLines reads non-empty lines from r until reading fails or ctx ends.
// A read error is sent on the error channel before the line channel closes.
func scanLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string, 10)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)

		s := bufio.NewScanner(r)
		s.Split(at.Splitter)
		for s.Scan() {
			if s.Text() == "" {
				continue
			}
			select {
			case lines <- s.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := s.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				err = ErrLineTooLong
			}
			errs <- err
		}
	}()
	return lines, errs
}

func (m *Modem) dispatchURC(line string) {
	select {
	case m.urc <- line:
	default:
		m.log.Warn("URC channel full, dropping line", "line", line)
	}
}

// URC returns the unsolicited lines of the port: registration indications,
// packet domain events, call state changes. Lines are dropped when the
// buffer is full.
func (m *Modem) URC() <-chan string {
	return m.urc
}

// Device returns the configured device name of the port.
func (m *Modem) Device() string {
	return m.config.Device
}

// Acquire marks the port as held by a connection attempt. It fails with
// ErrPortInUse while another holder has not released it.
func (m *Modem) Acquire() error {
	if m.closed.Load() {
		return ErrAlreadyClosed
	}
	if !m.acquired.CompareAndSwap(false, true) {
		return fmt.Errorf("%s: %w", m.config.Device, ErrPortInUse)
	}
	return nil
}

// Release gives back a port taken with Acquire.
func (m *Modem) Release() {
	m.acquired.Store(false)
}

// Command sends cmd to the port and returns the lines received before the
// final OK, joined with "\n". The "AT" prefix is added when missing. A
// timeout of zero uses the configured AT timeout.
//
// A final result other than OK is returned as *CommandError.
func (m *Modem) Command(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	if m.closed.Load() {
		return "", ErrAlreadyClosed
	}
	if timeout <= 0 {
		timeout = m.config.ATTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := &request{ctx: ctx, line: commandLine(cmd), reply: make(chan reply, 1)}

	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("command %q not sent: %w", req.line, ctx.Err())
	}
	defer func() { <-m.sem }()

	m.log.Debug("Sending command", "device", m.config.Device, "command", req.line)

	select {
	case m.requests <- req:
	case <-ctx.Done():
		return "", fmt.Errorf("command %q not sent: %w", req.line, ctx.Err())
	}

	select {
	case r := <-req.reply:
		if r.err != nil {
			return "", r.err
		}
		return r.resp, nil
	case <-ctx.Done():
		return "", fmt.Errorf("command %q timed out: %w", req.line, ctx.Err())
	}
}

// commandLine prefixes cmd with "AT" unless it already carries it.
func commandLine(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if len(cmd) >= 2 && strings.EqualFold(cmd[:2], at.CmdAt) {
		return cmd
	}
	return at.CmdAt + cmd
}

// Close stops the Loop and closes the transport. A closed port cannot be
// reused.
func (m *Modem) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}
	m.loopCancel()
	return m.transport.Close()
}

func (m *Modem) init(ctx context.Context) error {
	for _, c := range initCommands {
		if _, err := m.initCommand(ctx, c.cmd); err != nil {
			return fmt.Errorf("%s: %w", c.what, err)
		}
	}
	if m.config.SkipSIMCheck {
		return nil
	}
	return m.unlockSIM(ctx)
}

// unlockSIM enters the configured PIN when the SIM asks for one.
func (m *Modem) unlockSIM(ctx context.Context) error {
	status, err := m.initCommand(ctx, at.CmdSimStatus)
	if err != nil {
		return fmt.Errorf("query SIM status: %w", err)
	}

	switch {
	case strings.Contains(status, at.SimReady):
		return nil
	case !strings.Contains(status, at.SimPin):
		return fmt.Errorf("unsupported SIM state: %q", status)
	case m.config.SimPIN == "":
		return ErrSIMPinRequired
	}

	if _, err := m.initCommand(ctx, fmt.Sprintf(`AT+CPIN="%s"`, m.config.SimPIN)); err != nil {
		return fmt.Errorf("enter SIM PIN: %w", err)
	}
	return m.waitForSIMReady(ctx)
}

// waitForSIMReady polls the SIM status after a PIN was entered. Modem errors
// (SIM busy) are retried; transport failures end the wait.
func (m *Modem) waitForSIMReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, simReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(simPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("SIM not ready: %w", ctx.Err())
		case <-ticker.C:
		}

		status, err := m.initCommand(ctx, at.CmdSimStatus)
		switch {
		case err == nil && strings.Contains(status, at.SimReady):
			return nil
		case err != nil && !IsCommandError(err) && ctx.Err() == nil:
			return fmt.Errorf("query SIM status: %w", err)
		}
	}
}

// initCommand writes cmd and reads its reply straight from the transport.
// It runs before the Loop exists; unsolicited lines are skipped.
func (m *Modem) initCommand(ctx context.Context, cmd string) (string, error) {
	if _, err := m.transport.Write([]byte(cmd + "\r")); err != nil {
		return "", fmt.Errorf("write %q: %w", cmd, err)
	}

	s := bufio.NewScanner(m.transport)
	s.Split(at.Splitter)

	var lines []string
	for ctx.Err() == nil && s.Scan() {
		line := s.Text()
		switch at.Classify(line) {
		case at.TypeFinal:
			resp := strings.Join(lines, "\n")
			if !at.IsSuccess(line) {
				return resp, &CommandError{Command: cmd, Result: line, Response: resp}
			}
			return resp, nil
		case at.TypeData, at.TypePrompt:
			if line != "" {
				lines = append(lines, line)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.Err(); err != nil {
		return "", fmt.Errorf("read reply to %q: %w", cmd, err)
	}
	return "", io.EOF
}

// mergeCancel returns a context derived from ctx that is also cancelled
// when other is done.
func mergeCancel(ctx, other context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(other, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
