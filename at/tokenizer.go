package at

import (
	"bufio"
	"bytes"
	"strings"
)

var (
	crlf   = []byte(CRLF)
	prompt = []byte(Prompt)
)

// Splitter is a bufio.SplitFunc that cuts modem output into CRLF terminated
// lines. The text input prompt "> " is a token of its own since the modem
// does not terminate it. Whatever is left at EOF is returned as a last token.
//
// Echo is expected to be off (ATE0); echoed commands come out as plain lines.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	switch {
	case atEOF && len(data) == 0:
		return 0, nil, nil
	case bytes.HasPrefix(data, prompt):
		return len(prompt), data[:len(prompt)], nil
	}
	if i := bytes.Index(data, crlf); i >= 0 {
		return i + len(crlf), data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	// Request more data.
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// Classify tells final results, unsolicited codes, prompts and data lines
// apart.
//
// +CGEV: and +CLCC: may be the intermediate output of a command and are
// reported as data; the port treats data lines that arrive while no command
// is in flight as unsolicited.
func Classify(line string) ResponseType {
	if line == Prompt {
		return TypePrompt
	}
	if isFinal(line) {
		return TypeFinal
	}
	for _, urc := range urcPrefixes {
		if strings.HasPrefix(line, urc) {
			return TypeURC
		}
	}
	return TypeData
}

func isFinal(line string) bool {
	for _, code := range finalResults {
		if line == code {
			return true
		}
	}
	return strings.HasPrefix(line, CmeError) || strings.HasPrefix(line, CmsError)
}

// IsSuccess reports whether a final result line means the command succeeded.
func IsSuccess(line string) bool {
	return line == OK
}
