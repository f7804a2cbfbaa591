package at

import (
	"strings"

	"github.com/warthog618/modem/info"
)

// HasInfoPrefix reports whether line is an information response for cmd.
// cmd may be given with or without the trailing colon ("+EPDN" or "+EPDN:").
func HasInfoPrefix(line, cmd string) bool {
	return info.HasPrefix(line, strings.TrimSuffix(cmd, ":"))
}

// TrimInfoPrefix strips the "<cmd>:" prefix and any space that follows it.
// Lines without the prefix are returned unchanged.
func TrimInfoPrefix(line, cmd string) string {
	if !HasInfoPrefix(line, cmd) {
		return line
	}
	return info.TrimPrefix(line, strings.TrimSuffix(cmd, ":"))
}

// InfoLine returns the first line of a multi-line response that carries the
// information prefix for cmd. If no line does, the first non-empty line is
// returned so that callers can report what the modem actually sent.
func InfoLine(resp, cmd string) string {
	first := ""
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if HasInfoPrefix(line, cmd) {
			return line
		}
		if first == "" {
			first = line
		}
	}
	return first
}

// Fields splits a comma separated information payload and trims the
// whitespace around every field. Quotes are kept.
func Fields(payload string) []string {
	fields := strings.Split(payload, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// Unquote removes every double quote character from s.
func Unquote(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
