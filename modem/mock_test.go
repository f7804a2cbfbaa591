package modem_test

import (
	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/mmplugins/modem"
)

// exchange is one command written during initialization and the raw bytes
// the port answers with.
type exchange struct {
	cmd   string
	reply string
}

var (
	probeExchanges = []exchange{
		{"AT", "AT\r\nOK\r\n"},
		{"ATE0", "ATE0\r\nOK\r\n"},
		{"AT+CMEE=2", "OK\r\n"},
	}
	simReady       = exchange{"AT+CPIN?", "+CPIN: READY\r\nOK\r\n"}
	simPinRequired = exchange{"AT+CPIN?", "+CPIN: SIM PIN\r\nOK\r\n"}
)

// expectExchanges returns ordered Write/Read expectations for exchanges.
func expectExchanges(transport *modem.MockTransport, exchanges ...exchange) []any {
	var calls []any
	for _, ex := range exchanges {
		wire := []byte(ex.cmd + "\r")
		reply := ex.reply
		calls = append(calls,
			transport.EXPECT().Write(wire).Return(len(wire), nil),
			transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
				return copy(p, reply), nil
			}),
		)
	}
	return calls
}

// initMockCalls returns the expectations of a successful port initialization.
func initMockCalls(transport *modem.MockTransport) []any {
	return expectExchanges(transport, append(probeExchanges, simReady)...)
}
