// Package mtk implements the data bearer of MediaTek modems driven through
// the vendor +EAPNSET/+EAPNACT/+EPDN command set.
package mtk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"i4.energy/across/mmplugins/at"
	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/sequence"
)

const (
	// InvalidSession marks a bearer without an activated context.
	InvalidSession = -1

	// DefaultActivationDelay is how long activation waits for the network
	// registration indication.
	DefaultActivationDelay = 3 * time.Second

	apnProtocolParams = "type=default,supl,hipri;protocol=IPV4V6;roaming_protocol=IP;" +
		"authtype=2;carrier_enabled=1;max_conns=0;max_conns_time=0;wait_time=0;" +
		"bearer_bitmask=2147352575;inactive_timer=0"

	defaultPrefix = 24
)

// RegistrationWaiter blocks until the modem reports network registration or
// ctx is done.
type RegistrationWaiter func(ctx context.Context) error

// StepObserver is told about every connect and profile step entered. The
// step is a ConnectStep or a ProfileStep.
type StepObserver func(step fmt.Stringer)

type Option func(*Bearer)

func WithLogger(l *slog.Logger) Option {
	return func(b *Bearer) {
		b.log = l
	}
}

// WithConnectionTimeout bounds each AT command of connect and disconnect.
func WithConnectionTimeout(d time.Duration) Option {
	return func(b *Bearer) {
		b.timeout = d
	}
}

// WithActivationDelay sets the pause before activation. With a
// RegistrationWaiter it is the longest time spent waiting for it.
func WithActivationDelay(d time.Duration) Option {
	return func(b *Bearer) {
		b.activationDelay = d
	}
}

func WithRegistrationWaiter(w RegistrationWaiter) Option {
	return func(b *Bearer) {
		b.waitRegistration = w
	}
}

func WithStepObserver(o StepObserver) Option {
	return func(b *Bearer) {
		b.observe = o
	}
}

// Bearer is a MediaTek data bearer. It runs at most one connection attempt
// at a time and remembers the session id of the activated context.
type Bearer struct {
	modem            bearer.Modem
	log              *slog.Logger
	timeout          time.Duration
	activationDelay  time.Duration
	waitRegistration RegistrationWaiter
	observe          StepObserver

	mu         sync.Mutex
	props      bearer.Properties
	session    int
	connecting bool
}

// New returns a bearer for modem m. The modem is only asked for its best
// data port; the primary port is handed to Connect and Disconnect.
func New(m bearer.Modem, props bearer.Properties, opts ...Option) *Bearer {
	b := &Bearer{
		modem:           m,
		props:           props,
		session:         InvalidSession,
		timeout:         bearer.DefaultConnectionTimeout,
		activationDelay: DefaultActivationDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	return b
}

// Session returns the id of the active session or InvalidSession.
func (b *Bearer) Session() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

func (b *Bearer) setSession(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = id
}

// Properties returns the configuration used by the next connection attempt.
func (b *Bearer) Properties() bearer.Properties {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props
}

// SetProperties replaces the configuration. A running attempt keeps the
// snapshot it started with.
func (b *Bearer) SetProperties(p bearer.Properties) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.props = p
}

// Connecting reports whether a connection attempt is running.
func (b *Bearer) Connecting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connecting
}

// ports pairs primary with the best data port of the modem, if any.
func (b *Bearer) ports(primary bearer.Port) bearer.Ports {
	ports := bearer.Ports{Primary: primary}
	if b.modem != nil {
		ports.Data = b.modem.BestDataPort()
	}
	return ports
}

func (b *Bearer) notify(step fmt.Stringer) {
	if b.observe != nil {
		b.observe(step)
	}
}

// Connect allows data, writes the APN profile, activates the context and
// reads back its IP settings. Control commands go to primary, activation and
// queries to the best data port.
//
// Command failures are returned as they are, except for the data allow
// step whose outcome is only logged. Malformed replies yield a
// *bearer.Error of kind KindMalformedResponse.
func (b *Bearer) Connect(ctx context.Context, primary bearer.Port) (*bearer.ConnectResult, error) {
	if primary == nil {
		return nil, bearer.Errorf(bearer.KindNoPort, "no primary AT port available")
	}

	b.mu.Lock()
	if b.connecting {
		b.mu.Unlock()
		return nil, bearer.Errorf(bearer.KindInProgress, "connection attempt already in progress")
	}
	b.connecting = true
	props := b.props
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.connecting = false
		b.mu.Unlock()
	}()

	data := bearer.DataPort(b.ports(primary))
	if err := data.Acquire(); err != nil {
		return nil, bearer.Errorf(bearer.KindNoPort, "couldn't acquire data port %s: %w", data.Device(), err)
	}
	defer data.Release()

	c := &connection{
		bearer:  b,
		primary: primary,
		data:    data,
		props:   props,
		ipv4:    &bearer.IPConfig{Method: bearer.IPMethodStatic},
		log:     b.log.With("apn", props.APN, "data", data.Device()),
	}

	if err := sequence.Run(ctx, ConnectStepFirst, ConnectStepLast, c.step); err != nil {
		if ctx.Err() != nil {
			return nil, &bearer.Error{Kind: bearer.KindCancelled, Msg: "connection attempt cancelled", Err: err}
		}
		c.log.Warn("Connection attempt failed", "error", err)
		return nil, err
	}
	return c.result, nil
}

// ConnectAsync runs Connect in a new goroutine and reports to done.
func (b *Bearer) ConnectAsync(ctx context.Context, primary bearer.Port, done func(*bearer.ConnectResult, error)) {
	go func() {
		done(b.Connect(ctx, primary))
	}()
}

// Disconnect deactivates the active session. Without one it does nothing.
func (b *Bearer) Disconnect(ctx context.Context, primary bearer.Port) error {
	session := b.Session()
	if session == InvalidSession {
		return nil
	}
	if primary == nil {
		return bearer.Errorf(bearer.KindNoPort, "no primary AT port available")
	}

	if _, err := primary.Command(ctx, fmt.Sprintf("+EAPNACT=0,%d,1", session), b.timeout); err != nil {
		return err
	}

	b.log.Debug("Session deactivated", "session", session)
	b.setSession(InvalidSession)
	return nil
}

// DisconnectAsync runs Disconnect in a new goroutine and reports to done.
func (b *Bearer) DisconnectAsync(ctx context.Context, primary bearer.Port, done func(error)) {
	go func() {
		done(b.Disconnect(ctx, primary))
	}()
}

// awaitRegistration holds activation back until the network registration
// has been reported, or the activation delay has passed.
func (b *Bearer) awaitRegistration(ctx context.Context) error {
	if b.waitRegistration == nil {
		if b.activationDelay <= 0 {
			return nil
		}
		timer := time.NewTimer(b.activationDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	wctx := ctx
	if b.activationDelay > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, b.activationDelay)
		defer cancel()
	}

	err := b.waitRegistration(wctx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		b.log.Debug("No registration indication before activation delay")
	default:
		b.log.Warn("Waiting for registration failed", "error", err)
	}
	return nil
}

// connection is the state of one connection attempt.
type connection struct {
	bearer  *Bearer
	primary bearer.Port
	data    bearer.Port
	props   bearer.Properties
	log     *slog.Logger

	iface  string
	ipv4   *bearer.IPConfig
	result *bearer.ConnectResult
}

func (c *connection) step(ctx context.Context, step ConnectStep) error {
	c.bearer.notify(step)
	c.log.Debug("Connect step", "step", step)

	switch step {
	case ConnectStepFirst:
		return nil

	case ConnectStepDataAllow:
		if _, err := c.primary.Command(ctx, "+EDALLOW=1", c.bearer.timeout); err != nil {
			c.log.Warn("Data allow failed, continuing", "error", err)
		}
		return nil

	case ConnectStepAPNProfileSet:
		return sequence.Run(ctx, ProfileStepFirst, ProfileStepLast, c.profileStep)

	case ConnectStepAPNActivate:
		return c.activate(ctx)

	case ConnectStepIPConfigQuery:
		return c.queryIPConfig(ctx)

	case ConnectStepDNSConfigQuery:
		return c.queryDNSConfig(ctx)

	case ConnectStepLast:
		c.result = &bearer.ConnectResult{
			Data: bearer.NewNetPort(c.iface),
			IPv4: c.ipv4,
		}
		return nil
	}
	return fmt.Errorf("unexpected connect step %d", step)
}

func (c *connection) profileStep(ctx context.Context, step ProfileStep) error {
	c.bearer.notify(step)
	c.log.Debug("Profile step", "step", step)

	var cmd string
	switch step {
	case ProfileStepFirst, ProfileStepLast:
		return nil
	case ProfileStepUnlock:
		cmd = "+EAPNLOCK=1"
	case ProfileStepReset:
		cmd = "+EAPNSET"
	case ProfileStepSetAPN:
		cmd = fmt.Sprintf(`+EAPNSET="%s",1,"%s","%s"`, c.props.APN, c.props.User, c.props.Password)
	case ProfileStepSetAPNProtocol:
		cmd = fmt.Sprintf(`+EAPNSET="%s",2,"%s"`, c.props.APN, apnProtocolParams)
	case ProfileStepLock:
		cmd = "+EAPNLOCK=0"
	default:
		return fmt.Errorf("unexpected profile step %d", step)
	}

	_, err := c.primary.Command(ctx, cmd, c.bearer.timeout)
	return err
}

func (c *connection) activate(ctx context.Context) error {
	if err := c.bearer.awaitRegistration(ctx); err != nil {
		return err
	}

	cmd := fmt.Sprintf(`+EAPNACT=1,"%s","default",0`, c.props.APN)
	resp, err := c.data.Command(ctx, cmd, c.bearer.timeout)
	if err != nil {
		return err
	}

	line := at.InfoLine(resp, at.UrcNetworkEvent)
	if line == "" {
		c.log.Warn("Activation reply is empty, keeping session", "session", c.bearer.Session())
		return nil
	}

	action := at.ParseCGEVAction(line)
	cid, err := at.ParseCGEVPrimary(line, action)
	if err != nil {
		c.log.Warn("Couldn't parse session id from context event", "line", line, "error", err)
		return bearer.Errorf(bearer.KindMalformedResponse, "couldn't parse session id from %q: %w", line, err)
	}

	c.bearer.setSession(int(cid))
	c.log = c.log.With("session", cid)
	return nil
}

func (c *connection) queryIPConfig(ctx context.Context) error {
	session := c.bearer.Session()

	// 16 waits for the interface to come up, 4 for any address.
	resp, err := c.data.Command(ctx, fmt.Sprintf(`+EPDN=%d,"ifst",20`, session), c.bearer.timeout)
	if err != nil {
		return err
	}

	info, err := ParseEPDN(at.InfoLine(resp, epdnPrefix), session)
	if err != nil {
		return err
	}

	c.iface = info.Interface
	c.ipv4.Address = info.IPv4
	c.ipv4.Gateway = info.IPv4
	c.ipv4.Prefix = defaultPrefix
	return nil
}

func (c *connection) queryDNSConfig(ctx context.Context) error {
	session := c.bearer.Session()

	resp, err := c.data.Command(ctx, fmt.Sprintf("+CGCONTRDP=%d", session), c.bearer.timeout)
	if err != nil {
		return err
	}

	info, err := ParseCGCONTRDP(at.InfoLine(resp, cgcontrdpPrefix), session, c.log)
	if err != nil {
		return err
	}

	if info.Gateway != "" {
		c.ipv4.Gateway = info.Gateway
	}
	c.ipv4.DNS = info.DNS
	return nil
}
