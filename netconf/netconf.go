// Package netconf applies the IP settings of a connected bearer to the Linux
// network stack and probes the resulting connectivity.
package netconf

//go:generate go tool mockgen -destination=mock_netconf.go -package=netconf . Netlink

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"i4.energy/across/mmplugins/bearer"
)

// DefaultResolvDir holds the per-interface resolv.conf files.
const DefaultResolvDir = "/run/mmplugins"

// defRouteBaseMetric keeps the default routes of several modems apart; the
// link index is added to it.
const defRouteBaseMetric = 65000

var (
	ErrNoInterface = errors.New("missing data interface")
	ErrNoAddress   = errors.New("missing IPv4 address")
	ErrNoGateway   = errors.New("missing IPv4 gateway")

	_, ipv4Any, _ = net.ParseCIDR("0.0.0.0/0")
)

// Netlink is the subset of the netlink API used to configure an interface.
type Netlink interface {
	LinkByName(name string) (netlink.Link, error)
	LinkSetUp(link netlink.Link) error
	LinkSetDown(link netlink.Link) error
	LinkSetMTU(link netlink.Link, mtu int) error
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	AddrDel(link netlink.Link, addr *netlink.Addr) error
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	RouteAdd(route *netlink.Route) error
}

type systemNetlink struct{}

func (systemNetlink) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

func (systemNetlink) LinkSetUp(link netlink.Link) error {
	return netlink.LinkSetUp(link)
}

func (systemNetlink) LinkSetDown(link netlink.Link) error {
	return netlink.LinkSetDown(link)
}

func (systemNetlink) LinkSetMTU(link netlink.Link, mtu int) error {
	return netlink.LinkSetMTU(link, mtu)
}

func (systemNetlink) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	return netlink.AddrAdd(link, addr)
}

func (systemNetlink) AddrDel(link netlink.Link, addr *netlink.Addr) error {
	return netlink.AddrDel(link, addr)
}

func (systemNetlink) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}

func (systemNetlink) RouteAdd(route *netlink.Route) error {
	return netlink.RouteAdd(route)
}

// Configurator writes bearer IP settings into the kernel.
type Configurator struct {
	nl        Netlink
	resolvDir string
	log       *slog.Logger
}

type Option func(*Configurator)

// WithNetlink replaces the kernel netlink calls.
func WithNetlink(nl Netlink) Option {
	return func(c *Configurator) { c.nl = nl }
}

// WithResolvDir overrides DefaultResolvDir.
func WithResolvDir(dir string) Option {
	return func(c *Configurator) { c.resolvDir = dir }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Configurator) { c.log = logger }
}

func New(opts ...Option) *Configurator {
	c := &Configurator{nl: systemNetlink{}, resolvDir: DefaultResolvDir}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// ResolvConfPath returns the resolv.conf file written for iface.
func (c *Configurator) ResolvConfPath(iface string) string {
	return filepath.Join(c.resolvDir, iface+".dhcp")
}

// Apply brings the data interface of res up, assigns its IPv4 address, adds
// a default route through the gateway, sets the MTU and writes the DNS
// servers into the interface resolv.conf.
func (c *Configurator) Apply(res *bearer.ConnectResult) error {
	if res == nil || res.Data == nil || res.Data.Name == "" {
		return ErrNoInterface
	}
	iface := res.Data.Name
	ip := res.IPv4
	if ip == nil || ip.Address == "" {
		return fmt.Errorf("%w for interface %s", ErrNoAddress, iface)
	}
	if ip.Gateway == "" {
		return fmt.Errorf("%w for interface %s", ErrNoGateway, iface)
	}
	ipNet, err := netlink.ParseIPNet(fmt.Sprintf("%s/%d", ip.Address, ip.Prefix))
	if err != nil {
		return fmt.Errorf("invalid address %s/%d for interface %s: %w", ip.Address, ip.Prefix, iface, err)
	}
	gw := net.ParseIP(ip.Gateway)
	if gw == nil {
		return fmt.Errorf("invalid gateway %q for interface %s", ip.Gateway, iface)
	}

	link, err := c.nl.LinkByName(iface)
	if err != nil {
		return fmt.Errorf("failed to get handle for interface %s: %w", iface, err)
	}
	if err := c.nl.LinkSetUp(link); err != nil {
		return fmt.Errorf("failed to set interface %s UP: %w", iface, err)
	}
	addr := &netlink.Addr{IPNet: ipNet}
	if err := c.nl.AddrAdd(link, addr); err != nil {
		return fmt.Errorf("failed to add IP address %s to interface %s: %w", addr, iface, err)
	}
	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Dst:       ipv4Any,
		Gw:        gw,
		Priority:  defRouteBaseMetric + link.Attrs().Index,
		Table:     unix.RT_TABLE_MAIN,
		Scope:     netlink.SCOPE_UNIVERSE,
		Protocol:  unix.RTPROT_STATIC,
		Family:    netlink.FAMILY_V4,
	}
	switch {
	case gw.Equal(ipNet.IP):
		// Point-to-point link without a distinct peer.
		route.Gw = nil
		route.Scope = netlink.SCOPE_LINK
	case !ipNet.Contains(gw):
		route.Flags = int(netlink.FLAG_ONLINK)
	}
	if err := c.nl.RouteAdd(route); err != nil {
		return fmt.Errorf("failed to configure default route via %s for interface %s: %w", gw, iface, err)
	}
	if ip.MTU != 0 {
		if err := c.nl.LinkSetMTU(link, int(ip.MTU)); err != nil {
			return fmt.Errorf("failed to set MTU %d for interface %s: %w", ip.MTU, iface, err)
		}
	}

	if err := writeRename(c.ResolvConfPath(iface), resolvConf(ip.DNS)); err != nil {
		return fmt.Errorf("failed to write resolv conf for interface %s: %w", iface, err)
	}
	c.log.Info("Applied IP settings",
		"interface", iface, "address", ipNet, "gateway", gw, "dns", ip.DNS, "mtu", ip.MTU)
	return nil
}

// Remove flushes the addresses of iface, sets it down and deletes its
// resolv.conf. The default route goes away with the addresses.
func (c *Configurator) Remove(iface string) error {
	link, err := c.nl.LinkByName(iface)
	if err != nil {
		return fmt.Errorf("failed to get handle for interface %s: %w", iface, err)
	}
	addrs, err := c.nl.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return fmt.Errorf("failed to list addresses of interface %s: %w", iface, err)
	}
	for i := range addrs {
		if err := c.nl.AddrDel(link, &addrs[i]); err != nil {
			return fmt.Errorf("failed to remove address %s from interface %s: %w", addrs[i], iface, err)
		}
	}
	if err := c.nl.LinkSetDown(link); err != nil {
		return fmt.Errorf("failed to set interface %s DOWN: %w", iface, err)
	}
	if err := os.Remove(c.ResolvConfPath(iface)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove resolv conf for interface %s: %w", iface, err)
	}
	c.log.Info("Removed IP settings", "interface", iface)
	return nil
}

func resolvConf(servers []string) []byte {
	var b strings.Builder
	for _, s := range servers {
		b.WriteString("nameserver ")
		b.WriteString(s)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// writeRename replaces fileName atomically, creating its directory first.
func writeRename(fileName string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(fileName, b, 0o644)
}
