package simtech

import (
	"errors"
	"fmt"
	"strconv"

	"i4.energy/across/mmplugins/at"
)

const (
	clccPrefix      = "+CLCC:"
	voiceCallPrefix = "VOICE CALL:"
)

var ErrMalformedCLCC = errors.New("malformed +CLCC line")

// CLCC is one entry of a +CLCC call list:
//
//	+CLCC: <id>,<dir>,<stat>,<mode>,<mpty>[,<number>,<type>[,<alpha>]]
type CLCC struct {
	ID         uint
	Direction  uint
	Stat       uint
	Mode       uint
	Multiparty bool
	Number     string
	Type       uint
	Alpha      string
}

// ParseCLCC decodes a +CLCC line.
func ParseCLCC(line string) (*CLCC, error) {
	if !at.HasInfoPrefix(line, clccPrefix) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedCLCC, line)
	}
	fields := at.Fields(at.TrimInfoPrefix(line, clccPrefix))
	if len(fields) < 5 || len(fields) == 6 {
		return nil, fmt.Errorf("%w: %d fields in %q", ErrMalformedCLCC, len(fields), line)
	}

	var nums [5]uint
	for i := range nums {
		n, err := strconv.ParseUint(fields[i], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d of %q: %w", ErrMalformedCLCC, i, line, err)
		}
		nums[i] = uint(n)
	}
	c := &CLCC{
		ID:         nums[0],
		Direction:  nums[1],
		Stat:       nums[2],
		Mode:       nums[3],
		Multiparty: nums[4] == 1,
	}
	if len(fields) >= 7 {
		c.Number = at.Unquote(fields[5])
		t, err := strconv.ParseUint(fields[6], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: type of %q: %w", ErrMalformedCLCC, line, err)
		}
		c.Type = uint(t)
	}
	if len(fields) >= 8 {
		c.Alpha = at.Unquote(fields[7])
	}
	return c, nil
}
