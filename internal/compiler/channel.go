// Package compiler implements the statement compiler: the driver that
// dispatches each MML statement to a note/rest handler or a command
// handler, keeps per-channel compile-time state, and walks the
// bounded loop stack with two-pass backpatching. It is the core
// described by spec.md section 4.5.
package compiler

import (
	"unicode"

	"github.com/andkrau/p6psgmmlc-go/internal/bytecode"
	"github.com/andkrau/p6psgmmlc-go/internal/mml"
)

const (
	maxNestDepth          = 4
	initOctave            = 4
	initLLen96            = 24  // quarter note
	initLPLen96           = 192 // two whole notes
	defaultBufferCapacity = 1 << 16
)

// loopState holds the per-nesting-level bookkeeping backpatching needs:
// the byte offset the loop body starts at, the offset of an optional
// break marker, and a snapshot of channel state taken at the break so
// mutations after ':' don't leak past the matching ']'.
type loopState struct {
	loopStart       int
	exitMark        int // -1 means no ':' seen yet at this level
	hasExit         bool
	savedLLen96     uint16
	savedLpLen96    uint16
	savedOctave     int
	savedOctaveLast int
}

// ChannelCompiler compiles MML statements for a single PSG channel. It
// holds all compile-time state described in spec.md section 3: default
// lengths, current octave, key shift, the loop stack, and the sticky
// first error.
type ChannelCompiler struct {
	out *bytecode.Emitter

	lLen96  uint16
	lpLen96 uint16
	octave  int

	keyShift int

	nestDepth int
	loops     [maxNestDepth]loopState

	lineNo int
	err    *CompileError
}

// New returns a ChannelCompiler in its initial state: octave 4, L=24
// ticks (a quarter note), L+=192 ticks, no key shift, no open loops.
func New() *ChannelCompiler {
	return &ChannelCompiler{
		out:     bytecode.New(defaultBufferCapacity, initOctave),
		lLen96:  initLLen96,
		lpLen96: initLPLen96,
		octave:  initOctave,
	}
}

// Err returns the first error recorded for this channel, or nil.
func (c *ChannelCompiler) Err() *CompileError { return c.err }

// Bytes returns the compiled bytecode stream so far.
func (c *ChannelCompiler) Bytes() []byte { return c.out.Bytes() }

func (c *ChannelCompiler) fail(err error) error {
	if c.err == nil {
		if ce, ok := err.(*CompileError); ok {
			c.err = ce
		} else {
			c.err = newErr(ErrInternal, c.lineNo, 0, "%s", err.Error())
		}
	}
	return c.err
}

// CompileLine compiles one source line already stripped of its channel
// letter by the driver. Statements are dispatched left to right; the
// first error stops the line (and the channel) per spec.md section 7.
func (c *ChannelCompiler) CompileLine(lineNo int, text string) error {
	c.lineNo = lineNo
	if c.err != nil {
		return c.err
	}

	s := mml.NewScanner(lineNo, text)
	for {
		s.SkipSpace()
		if s.AtEnd() {
			break
		}
		r, _ := s.Peek()
		if r == ';' {
			s.SkipToEnd()
			break
		}
		if err := c.compileStatement(s); err != nil {
			return c.fail(err)
		}
	}
	return nil
}

// compileStatement dispatches on the uppercased first character of a
// statement, per spec.md section 4.5 Dispatch.
func (c *ChannelCompiler) compileStatement(s *mml.Scanner) error {
	col := s.Column()
	r, ok := s.Advance()
	if !ok {
		return nil
	}
	r = unicode.ToUpper(r)

	switch {
	case r == 'R' || (r >= 'A' && r <= 'G'):
		return c.compileNote(s, r, col)
	default:
		return c.compileCommand(s, r, col)
	}
}

// FinishChannel seals the channel: any unclosed loop is an error,
// otherwise it appends the end-of-stream sentinel.
func (c *ChannelCompiler) FinishChannel() error {
	if c.err != nil {
		return c.err
	}
	if c.nestDepth != 0 {
		open := c.nestDepth
		c.nestDepth = 0
		return c.fail(newErr(ErrCloseNest, c.lineNo, 0, "channel ends with %d loop(s) still open", open))
	}
	if err := c.out.EmitByte(bytecode.OpEnd); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *ChannelCompiler) funcRange(col int, format string, args ...any) error {
	return newErr(ErrFuncRange, c.lineNo, col, format, args...)
}

func (c *ChannelCompiler) syntaxErr(col int, format string, args ...any) error {
	return newErr(ErrSyntax, c.lineNo, col, format, args...)
}
