package netconf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/miekg/dns"
	fastping "github.com/tatsushid/go-fastping"
)

const (
	dnsProbeTimeout      = 5 * time.Second
	icmpProbeMaxRTT      = time.Second
	icmpProbeMaxAttempts = 3
)

// DefaultProbeAddr is pinged when no DNS server answers.
var DefaultProbeAddr = net.ParseIP("8.8.8.8")

// Prober checks that traffic sourced from the bearer address gets through.
// It queries each DNS server of the bearer and, as a last resort, pings
// ProbeAddr.
type Prober struct {
	DNSTimeout time.Duration
	// DNSPort is the port the DNS servers listen on, "53" when empty.
	DNSPort   string
	ProbeAddr net.IP
	Log       *slog.Logger

	ping func(ctx context.Context, src, dst net.IP) error
}

func NewProber(logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		DNSTimeout: dnsProbeTimeout,
		DNSPort:    "53",
		ProbeAddr:  DefaultProbeAddr,
		Log:        logger,
		ping:       icmpProbe,
	}
}

// Probe returns nil as soon as one probe succeeds, otherwise every probe
// error joined together.
func (p *Prober) Probe(ctx context.Context, src net.IP, dnsServers []string) error {
	var errs []error

	port := p.DNSPort
	if port == "" {
		port = "53"
	}
	client := dns.Client{
		Dialer: &net.Dialer{
			LocalAddr: &net.UDPAddr{IP: src},
			Timeout:   p.DNSTimeout,
		},
		Timeout: p.DNSTimeout,
	}
	for _, server := range dnsServers {
		// Query the root domain to keep the answer small.
		msg := new(dns.Msg)
		msg.SetQuestion(".", dns.TypeA)
		_, rtt, err := client.ExchangeContext(ctx, msg, net.JoinHostPort(server, port))
		if err == nil {
			p.Log.Debug("DNS probe succeeded", "server", server, "rtt", rtt)
			return nil
		}
		errs = append(errs, fmt.Errorf("dns probe %s: %w", server, err))
	}

	if p.ProbeAddr != nil && p.ping != nil {
		err := p.ping(ctx, src, p.ProbeAddr)
		if err == nil {
			p.Log.Debug("ICMP probe succeeded", "addr", p.ProbeAddr)
			return nil
		}
		errs = append(errs, fmt.Errorf("icmp probe %s: %w", p.ProbeAddr, err))
	}
	if len(errs) == 0 {
		return errors.New("no connectivity probe available")
	}
	return errors.Join(errs...)
}

func icmpProbe(ctx context.Context, src, dst net.IP) error {
	srcAddr := net.IPAddr{IP: src}
	dstAddr := net.IPAddr{IP: dst}

	pinger := fastping.NewPinger()
	pinger.MaxRTT = icmpProbeMaxRTT
	pinger.AddIPAddr(&dstAddr)
	if src != nil {
		if _, err := pinger.Source(srcAddr.String()); err != nil {
			return fmt.Errorf("failed to set source IP %s: %w", src, err)
		}
	}

	errChan := make(chan error, 1)
	pinger.OnRecv = func(ip *net.IPAddr, _ time.Duration) {
		if ip != nil && ip.IP.Equal(dst) {
			select {
			case errChan <- nil:
			default:
			}
		}
	}
	var attempt int
	pinger.OnIdle = func() {
		attempt++
		if attempt == icmpProbeMaxAttempts {
			select {
			case errChan <- fmt.Errorf("no ping response received from %s", dst):
			default:
			}
		}
	}

	pinger.RunLoop()
	defer pinger.Stop()
	select {
	case <-pinger.Done():
		return pinger.Err()
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
