// Package driver implements the thin front-end spec.md section 6
// describes as out of core scope: reading lines, stripping the legacy
// BASIC-style line-number prefix, routing each line to the channel
// compiler its leading letter names, and toggling compilation on and
// off via a bare 'X' line.
package driver

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/andkrau/p6psgmmlc-go/internal/compiler"
)

const numChannels = 3

// Driver routes MML source lines to three independent channel
// compilers (D, E, F -> channels 1, 2, 3) and aggregates their errors
// without letting one channel's failure stop another from compiling,
// matching spec.md section 7's "continue compiling other channels"
// policy.
type Driver struct {
	channels       [numChannels]*compiler.ChannelCompiler
	compileEnabled bool

	// lastLine remembers, per channel, the raw source line most recently
	// routed to it, up to and including the line of the channel's first
	// error, for error reporting context after a channel closes.
	lastLine   [numChannels]string
	lastLineNo [numChannels]int
}

// New returns a Driver with three fresh channel compilers and
// compilation enabled (the reference design starts un-disabled: the
// first 'X' line disables it).
func New() *Driver {
	d := &Driver{compileEnabled: true}
	for i := range d.channels {
		d.channels[i] = compiler.New()
	}
	return d
}

// Channel returns the channel compiler for PSG channel 1, 2, or 3
// (index 0, 1, 2).
func (d *Driver) Channel(i int) *compiler.ChannelCompiler { return d.channels[i] }

// ProcessLine strips the optional BASIC-style prefix, routes the line
// by its leading channel letter, and handles the 'X' toggle. lineNo is
// the 1-based source line number, used for diagnostics.
func (d *Driver) ProcessLine(lineNo int, raw string) {
	p := stripLineNumberPrefix(raw)
	if p == "" {
		return
	}
	ch := unicode.ToUpper(rune(p[0]))

	if idx, ok := channelIndex(ch); ok {
		if d.compileEnabled {
			failedBefore := d.channels[idx].Err() != nil
			d.channels[idx].CompileLine(lineNo, p[1:])
			if !failedBefore {
				d.lastLine[idx] = raw
				d.lastLineNo[idx] = lineNo
			}
		}
		return
	}

	if ch == 'X' {
		d.compileEnabled = !d.compileEnabled
	}
}

func channelIndex(ch rune) (int, bool) {
	switch ch {
	case 'D':
		return 0, true
	case 'E':
		return 1, true
	case 'F':
		return 2, true
	default:
		return -1, false
	}
}

// stripLineNumberPrefix removes leading whitespace and an optional
// decimal line-number token followed by an optional '"', the legacy
// BASIC-style input convention spec.md section 6 describes.
func stripLineNumberPrefix(line string) string {
	i := 0
	n := len(line)
	for i < n && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i < n && line[i] >= '0' && line[i] <= '9' {
		for i < n && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		for i < n && line[i] == ' ' {
			i++
		}
		if i < n && line[i] == '"' {
			i++
		}
	}
	return strings.TrimRight(line[i:], "\r\n")
}

// ChannelResult is one channel's outcome after Finish.
type ChannelResult struct {
	Bytes  []byte
	Err    *compiler.CompileError
	Line   string
	LineNo int
}

// Finish closes all three channels, collecting every error rather than
// stopping at the first, so the caller can report diagnostics from
// every channel in one pass.
func (d *Driver) Finish() ([numChannels]ChannelResult, bool) {
	var results [numChannels]ChannelResult
	ok := true
	for i, ch := range d.channels {
		if err := ch.FinishChannel(); err != nil {
			results[i].Err = ch.Err()
			results[i].Line = d.lastLine[i]
			results[i].LineNo = d.lastLineNo[i]
			ok = false
		}
		results[i].Bytes = ch.Bytes()
	}
	return results, ok
}

// FormatDiagnostic renders a CompileError the way the original
// compiler's stderr output did: the error message, the offending
// source line, and a caret under the error column.
func FormatDiagnostic(err *compiler.CompileError, line string) string {
	caret := strings.Repeat(" ", max(err.Column-1, 0)) + "^"
	return fmt.Sprintf("%s\n%s\n%s", err.Error(), line, caret)
}
