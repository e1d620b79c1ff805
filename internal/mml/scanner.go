// Package mml implements the lexical layer of the MML compiler: a
// character-level scanner over a single source line, the shared PARA
// operand reader, and the note-length resolver. None of it knows about
// bytecode or channel state; those live in internal/bytecode and
// internal/compiler.
package mml

import "unicode"

// Scanner is a character cursor over a single line of MML source.
// It tracks a 1-based column for diagnostics and never looks past the
// end of the text; the text is expected without its line terminator
// (the driver strips it), and its end is reported to callers as
// "no more input".
type Scanner struct {
	src    []rune
	pos    int
	lineNo int
}

// NewScanner returns a Scanner positioned at the start of text.
func NewScanner(lineNo int, text string) *Scanner {
	return &Scanner{src: []rune(text), lineNo: lineNo}
}

// Line returns the source line number this scanner was constructed with.
func (s *Scanner) Line() int { return s.lineNo }

// Column returns the 1-based column of the cursor's current position.
func (s *Scanner) Column() int { return s.pos + 1 }

// AtEnd reports whether the cursor has consumed the whole line.
func (s *Scanner) AtEnd() bool { return s.pos >= len(s.src) }

// Peek returns the rune at the cursor without consuming it. ok is false
// at end of line.
func (s *Scanner) Peek() (r rune, ok bool) {
	if s.AtEnd() {
		return 0, false
	}
	return s.src[s.pos], true
}

// Advance returns the rune at the cursor and moves the cursor forward.
// ok is false at end of line.
func (s *Scanner) Advance() (r rune, ok bool) {
	if s.AtEnd() {
		return 0, false
	}
	r = s.src[s.pos]
	s.pos++
	return r, true
}

// SkipSpace consumes spaces, tabs, and carriage returns.
func (s *Scanner) SkipSpace() {
	for !s.AtEnd() {
		r := s.src[s.pos]
		if r != ' ' && r != '\t' && r != '\r' {
			break
		}
		s.pos++
	}
}

// SkipToEnd discards the remainder of the line, used for comments and
// for the `X` command which drops the rest of its statement.
func (s *Scanner) SkipToEnd() { s.pos = len(s.src) }

// Rest returns the unconsumed tail of the line, for diagnostics.
func (s *Scanner) Rest() string { return string(s.src[s.pos:]) }

// ParseUnsigned consumes a run of decimal digits. It returns false
// without consuming anything if the cursor is not at a digit. The
// accumulated value saturates at the maximum uint32 rather than
// wrapping; callers that need a narrower range must range-check the
// result themselves.
func (s *Scanner) ParseUnsigned() (uint32, bool) {
	start := s.pos
	var v uint64
	for !s.AtEnd() && unicode.IsDigit(s.src[s.pos]) {
		v = v*10 + uint64(s.src[s.pos]-'0')
		if v > 0xFFFFFFFF {
			v = 0xFFFFFFFF
		}
		s.pos++
	}
	if s.pos == start {
		return 0, false
	}
	return uint32(v), true
}

// ParseSigned consumes an optional leading '+' or '-' followed by
// ParseUnsigned. It fails (without consuming the sign) if no digits
// follow the sign.
func (s *Scanner) ParseSigned() (int32, bool) {
	start := s.pos
	neg := false
	if r, ok := s.Peek(); ok && (r == '+' || r == '-') {
		neg = r == '-'
		s.pos++
	}
	u, ok := s.ParseUnsigned()
	if !ok {
		s.pos = start
		return 0, false
	}
	if neg {
		return -int32(u), true
	}
	return int32(u), true
}
