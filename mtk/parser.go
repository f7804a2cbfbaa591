package mtk

import (
	"fmt"
	"log/slog"
	"net/netip"
	"strconv"
	"strings"

	"i4.energy/across/mmplugins/at"
	"i4.energy/across/mmplugins/bearer"
)

const (
	epdnPrefix      = "+EPDN"
	cgcontrdpPrefix = "+CGCONTRDP"

	// InterfacePrefix names the network interfaces created by the modem.
	InterfacePrefix = "ccmni"
)

// EPDNInfo is the decoded interface status of a +EPDN reply.
type EPDNInfo struct {
	// Interface is the network interface name, e.g. "ccmni2".
	Interface string
	IPv4      string
	// IPv6 is never filled in. The reply carries it in the optional
	// <address2> field, which is not decoded yet.
	IPv6 string
}

// CGCONTRDPInfo holds the routing details of a +CGCONTRDP reply. Fields that
// failed validation are left out.
type CGCONTRDPInfo struct {
	Gateway string
	// DNS lists the primary server first.
	DNS []string
}

func malformed(reply string, err error, format string, args ...any) error {
	return &bearer.Error{
		Kind: bearer.KindMalformedResponse,
		Msg:  fmt.Sprintf("%s: %s: %v", reply, fmt.Sprintf(format, args...), err),
		Err:  err,
	}
}

// splitReply checks the information prefix of line and splits its payload.
func splitReply(line, prefix string) ([]string, error) {
	line = strings.TrimSpace(line)
	if !at.HasInfoPrefix(line, prefix) {
		return nil, malformed(prefix, ErrMissingPrefix, "reply %q", line)
	}
	return at.Fields(at.TrimInfoPrefix(line, prefix)), nil
}

// checkSession compares the <aid> field with the session being connected.
func checkSession(prefix, field string, expectedSession int) error {
	got, err := strconv.ParseUint(field, 10, 32)
	if err != nil || int64(got) != int64(expectedSession) {
		return malformed(prefix, ErrSessionMismatch, "got %q, expected %d", field, expectedSession)
	}
	return nil
}

// parseIPv4 unquotes s and accepts only a dotted-decimal IPv4 address other
// than 0.0.0.0.
func parseIPv4(s string) (string, bool) {
	addr, err := netip.ParseAddr(at.Unquote(s))
	if err != nil || !addr.Is4() || addr.IsUnspecified() {
		return "", false
	}
	return addr.String(), true
}

// ParseEPDN decodes the interface status reported by AT+EPDN=<aid>,"ifst",...:
//
//	+EPDN:<aid>,"new",<rat_type>,<interface_id>,<mtu>,<address_type>,<address1>[,<address2>]
//	+EPDN:<aid>,"update",<interface_id>,<address_type>,<address1>[,<address2>]
//	+EPDN:<aid>,"err",<err>
//
// The interface id combines a transaction id with the interface index; only
// the last two digits name the interface.
func ParseEPDN(line string, expectedSession int) (*EPDNInfo, error) {
	fields, err := splitReply(line, epdnPrefix)
	if err != nil {
		return nil, err
	}
	if len(fields) < 2 {
		return nil, malformed(epdnPrefix, ErrNotEnoughItems, "%d fields", len(fields))
	}

	var ifaceIdx, addrIdx int
	switch tag := at.Unquote(fields[1]); tag {
	case "new":
		if len(fields) < 7 {
			return nil, malformed(epdnPrefix, ErrNotEnoughItems, "%d fields in %q reply", len(fields), tag)
		}
		ifaceIdx, addrIdx = 3, 6
	case "update":
		if len(fields) < 5 {
			return nil, malformed(epdnPrefix, ErrNotEnoughItems, "%d fields in %q reply", len(fields), tag)
		}
		ifaceIdx, addrIdx = 2, 4
	default:
		return nil, malformed(epdnPrefix, ErrUnknownType, "tag %q", tag)
	}

	if err := checkSession(epdnPrefix, fields[0], expectedSession); err != nil {
		return nil, err
	}

	ifaceID, err := strconv.ParseUint(fields[ifaceIdx], 10, 32)
	if err != nil {
		return nil, malformed(epdnPrefix, ErrInvalidInterface, "%q", fields[ifaceIdx])
	}

	ipv4, ok := parseIPv4(fields[addrIdx])
	if !ok {
		return nil, malformed(epdnPrefix, ErrInvalidAddress, "%q", fields[addrIdx])
	}

	return &EPDNInfo{
		Interface: fmt.Sprintf("%s%d", InterfacePrefix, ifaceID%100),
		IPv4:      ipv4,
	}, nil
}

// ParseCGCONTRDP decodes the gateway and DNS servers of a dynamic context
// parameters reply:
//
//	+CGCONTRDP:<aid>,<bearer_id>,<apn>[,<local_addr/mask>[,<gw>[,<dns1>[,<dns2>[...]]]]]
//
// An unusable gateway or DNS address is logged and skipped; only the prefix,
// the field count and the session id can fail the decode.
func ParseCGCONTRDP(line string, expectedSession int, log *slog.Logger) (*CGCONTRDPInfo, error) {
	if log == nil {
		log = slog.Default()
	}

	fields, err := splitReply(line, cgcontrdpPrefix)
	if err != nil {
		return nil, err
	}
	if len(fields) < 7 {
		return nil, malformed(cgcontrdpPrefix, ErrNotEnoughItems, "%d fields", len(fields))
	}
	if err := checkSession(cgcontrdpPrefix, fields[0], expectedSession); err != nil {
		return nil, err
	}

	info := &CGCONTRDPInfo{}
	if gw, ok := parseIPv4(fields[4]); ok {
		info.Gateway = gw
	} else {
		log.Warn("Ignoring invalid gateway address", "value", fields[4])
	}
	for i, name := range []string{"primary", "secondary"} {
		field := fields[5+i]
		if dns, ok := parseIPv4(field); ok {
			info.DNS = append(info.DNS, dns)
		} else {
			log.Warn("Ignoring invalid DNS address", "server", name, "value", field)
		}
	}
	return info, nil
}
