package bearer

import (
	"encoding/json"
	"fmt"
)

// IPMethod tells the host how to configure an interface.
type IPMethod int

const (
	IPMethodUnknown IPMethod = iota
	IPMethodPPP
	IPMethodStatic
	IPMethodDHCP
)

var ipMethodNames = map[IPMethod]string{
	IPMethodUnknown: "unknown",
	IPMethodPPP:     "ppp",
	IPMethodStatic:  "static",
	IPMethodDHCP:    "dhcp",
}

func (m IPMethod) String() string {
	if s, ok := ipMethodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("IPMethod(%d)", int(m))
}

func (m IPMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *IPMethod) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for method, s := range ipMethodNames {
		if s == name {
			*m = method
			return nil
		}
	}
	return fmt.Errorf("unknown IP method %q", name)
}

// IPConfig describes one address family of a connected bearer.
type IPConfig struct {
	Method  IPMethod `json:"method"`
	Address string   `json:"address,omitempty"`
	Prefix  uint     `json:"prefix,omitempty"`
	Gateway string   `json:"gateway,omitempty"`
	DNS     []string `json:"dns,omitempty"`
	MTU     uint     `json:"mtu,omitempty"`
}

// NetPort is the network interface created by a connected bearer.
type NetPort struct {
	Name string `json:"name"`
}

// NewNetPort returns a handle for the network interface called name.
func NewNetPort(name string) *NetPort {
	return &NetPort{Name: name}
}

// ConnectResult pairs the data interface with its IP settings. IPv6 is nil
// when the bearer did not report any.
type ConnectResult struct {
	Data *NetPort  `json:"data"`
	IPv4 *IPConfig `json:"ipv4,omitempty"`
	IPv6 *IPConfig `json:"ipv6,omitempty"`
}
