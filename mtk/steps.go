package mtk

// ConnectStep is a state of the connect sequence.
type ConnectStep int

const (
	ConnectStepFirst ConnectStep = iota
	ConnectStepDataAllow
	ConnectStepAPNProfileSet
	ConnectStepAPNActivate
	ConnectStepIPConfigQuery
	ConnectStepDNSConfigQuery
	ConnectStepLast
)

var connectStepNames = [...]string{
	ConnectStepFirst:          "first",
	ConnectStepDataAllow:      "data-allow",
	ConnectStepAPNProfileSet:  "apn-profile-set",
	ConnectStepAPNActivate:    "apn-activate",
	ConnectStepIPConfigQuery:  "ip-config-query",
	ConnectStepDNSConfigQuery: "dns-config-query",
	ConnectStepLast:           "last",
}

func (s ConnectStep) String() string {
	if s >= 0 && int(s) < len(connectStepNames) {
		return connectStepNames[s]
	}
	return "unknown"
}

// ProfileStep is a state of the APN profile sub-sequence.
type ProfileStep int

const (
	ProfileStepFirst ProfileStep = iota
	ProfileStepUnlock
	ProfileStepReset
	ProfileStepSetAPN
	ProfileStepSetAPNProtocol
	ProfileStepLock
	ProfileStepLast
)

var profileStepNames = [...]string{
	ProfileStepFirst:          "first",
	ProfileStepUnlock:         "unlock",
	ProfileStepReset:          "reset",
	ProfileStepSetAPN:         "set-apn",
	ProfileStepSetAPNProtocol: "set-apn-protocol",
	ProfileStepLock:           "lock",
	ProfileStepLast:           "last",
}

func (s ProfileStep) String() string {
	if s >= 0 && int(s) < len(profileStepNames) {
		return profileStepNames[s]
	}
	return "unknown"
}
