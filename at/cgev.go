package at

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CGEVAction identifies the kind of packet domain event reported by +CGEV.
type CGEVAction int

const (
	CGEVUnknown CGEVAction = iota
	CGEVNetworkDetach
	CGEVMEDetach
	CGEVNetworkClass
	CGEVMEClass
	CGEVNetworkActivatePrimary
	CGEVMEActivatePrimary
	CGEVNetworkActivateSecondary
	CGEVMEActivateSecondary
	CGEVNetworkDeactivatePrimary
	CGEVMEDeactivatePrimary
	CGEVNetworkDeactivate
	CGEVMEDeactivate
	CGEVNetworkModify
	CGEVMEModify
	CGEVReject
	CGEVNetworkReactivate
)

// keyword prefixes, longest first where two share a stem
var cgevKeywords = []struct {
	prefix string
	action CGEVAction
}{
	{"NW DETACH", CGEVNetworkDetach},
	{"ME DETACH", CGEVMEDetach},
	{"NW CLASS", CGEVNetworkClass},
	{"ME CLASS", CGEVMEClass},
	{"NW PDN ACT", CGEVNetworkActivatePrimary},
	{"ME PDN ACT", CGEVMEActivatePrimary},
	{"NW PDN DEACT", CGEVNetworkDeactivatePrimary},
	{"ME PDN DEACT", CGEVMEDeactivatePrimary},
	{"NW ACT", CGEVNetworkActivateSecondary},
	{"ME ACT", CGEVMEActivateSecondary},
	{"NW DEACT", CGEVNetworkDeactivate},
	{"ME DEACT", CGEVMEDeactivate},
	{"NW MODIFY", CGEVNetworkModify},
	{"ME MODIFY", CGEVMEModify},
	{"NW REACT", CGEVNetworkReactivate},
	{"REJECT", CGEVReject},
}

func (a CGEVAction) String() string {
	for _, kw := range cgevKeywords {
		if kw.action == a {
			return kw.prefix
		}
	}
	return "UNKNOWN"
}

// ErrCGEVNotPrimary is returned when a primary context id is requested from
// an event that does not describe a primary PDN context.
var ErrCGEVNotPrimary = errors.New("not a primary PDN context event")

func cgevPayload(line string) string {
	line = strings.TrimSpace(line)
	if HasInfoPrefix(line, UrcNetworkEvent) {
		line = TrimInfoPrefix(line, UrcNetworkEvent)
	}
	return line
}

// ParseCGEVAction classifies a +CGEV indication. The "+CGEV:" prefix is
// optional.
func ParseCGEVAction(line string) CGEVAction {
	payload := cgevPayload(line)
	for _, kw := range cgevKeywords {
		if strings.HasPrefix(payload, kw.prefix) {
			return kw.action
		}
	}
	return CGEVUnknown
}

// ParseCGEVPrimary extracts the context id from a primary PDN context
// activation or deactivation event:
//
//	+CGEV: NW PDN ACT <cid>[,<WLAN_Offload>]
//	+CGEV: ME PDN ACT <cid>[,<reason>[,<cid_other>]]
//	+CGEV: NW PDN DEACT <cid>[,<WLAN_Offload>]
//	+CGEV: ME PDN DEACT <cid>
func ParseCGEVPrimary(line string, action CGEVAction) (uint, error) {
	switch action {
	case CGEVNetworkActivatePrimary, CGEVMEActivatePrimary,
		CGEVNetworkDeactivatePrimary, CGEVMEDeactivatePrimary:
	default:
		return 0, fmt.Errorf("%w: %s", ErrCGEVNotPrimary, action)
	}

	payload := strings.TrimPrefix(cgevPayload(line), action.String())
	fields := Fields(payload)
	if len(fields) == 0 || fields[0] == "" {
		return 0, fmt.Errorf("missing context id in +CGEV indication %q", line)
	}
	cid, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid context id in +CGEV indication %q: %w", line, err)
	}
	return uint(cid), nil
}
