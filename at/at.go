// Package at holds the wire level pieces of the AT command protocol: result
// codes, line framing and classification, info-line helpers and parsers for
// standard 3GPP indications.
package at

// Framing
const (
	CRLF   = "\r\n"
	Prompt = "> "
)

// Final result codes
const (
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"
)

// Unsolicited result codes
const (
	UrcCall              = "RING"
	UrcNetworkEvent      = "+CGEV:"
	UrcRegistrationIndic = "+CIREPI:"
	UrcCallList          = "+CLCC:"
	UrcVoiceCall         = "VOICE CALL:"
)

// Commands issued while a port is initialized. They carry the "AT" prefix
// because they bypass Modem.Command.
const (
	CmdAt            = "AT"
	CmdEchoOff       = "ATE0"
	CmdVerboseErrors = "AT+CMEE=2"
	CmdSimStatus     = "AT+CPIN?"
)

// SIM states reported by +CPIN?
const (
	SimReady = "READY"
	SimPin   = "SIM PIN"
)

var finalResults = []string{OK, ERROR, NoCarrier, NoDialtone, Busy, NoAnswer}

// urcPrefixes are always unsolicited. +CGEV: and +CLCC: are not listed since
// they also answer commands.
var urcPrefixes = []string{UrcCall, UrcRegistrationIndic, UrcVoiceCall}

// ResponseType is the class of a line read from a port.
type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR, +CME ERROR: ...
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output (+EPDN: ...)
	TypePrompt                     // Text input prompt
)

func (t ResponseType) String() string {
	switch t {
	case TypeFinal:
		return "final"
	case TypeURC:
		return "urc"
	case TypeData:
		return "data"
	case TypePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}
