package compiler

import (
	"github.com/andkrau/p6psgmmlc-go/internal/bytecode"
	"github.com/andkrau/p6psgmmlc-go/internal/mml"
)

// compileCommand dispatches on the uppercased first character of a
// non-note statement and implements the byte encodings and operand
// rules of spec.md section 4.5's command table.
func (c *ChannelCompiler) compileCommand(s *mml.Scanner, letter rune, col int) error {
	switch letter {
	case 'O':
		return c.cmdOctaveSet(s, col)
	case '>':
		return c.cmdOctaveStep(s, col, +1)
	case '<':
		return c.cmdOctaveStep(s, col, -1)
	case 'V':
		return c.cmdVolume(s, col)
	case '(':
		return c.cmdVolDown(s, col)
	case ')':
		return c.cmdVolUp(s, col)
	case 'I':
		return c.cmdUserI(s, col)
	case 'J':
		return c.cmdReplayFromTop(col)
	case 'L':
		return c.cmdLength(s, col)
	case 'M':
		return c.cmdVibrato(s, col)
	case 'N':
		return c.out.EmitByte(bytecode.OpVibratoToggle)
	case 'P':
		return c.cmdNoiseMode(s, col)
	case 'Q':
		return c.cmdQuantize(s, col)
	case 'S':
		return c.cmdEnvelope(s, col)
	case 'T':
		return c.cmdTempo(s, col)
	case 'U':
		return c.cmdDetune(s, col)
	case 'W':
		return c.cmdNoiseFreq(s, col)
	case 'X':
		return c.cmdStop(s, col)
	case '_':
		return c.cmdKeyShift(s, col)
	case '[':
		return c.cmdLoopOpen(col)
	case ']':
		return c.cmdLoopClose(s, col)
	case ':':
		return c.cmdLoopBreak(col)
	default:
		return c.syntaxErr(col, "unknown command '%c'", letter)
	}
}

// parseUnsignedDefault1 reads an optional unsigned operand, defaulting
// to 1 when no digits are present, for commands written "X [n]".
func parseUnsignedDefault1(s *mml.Scanner) uint32 {
	s.SkipSpace()
	if v, ok := s.ParseUnsigned(); ok {
		return v
	}
	return 1
}

func (c *ChannelCompiler) cmdOctaveSet(s *mml.Scanner, col int) error {
	s.SkipSpace()
	n, ok := s.ParseUnsigned()
	if !ok || n < 1 || n > 8 {
		return c.funcRange(col, "O requires a value in 1..8")
	}
	c.octave = int(n)
	return nil
}

func (c *ChannelCompiler) cmdOctaveStep(s *mml.Scanner, col, dir int) error {
	n := int(parseUnsignedDefault1(s))
	octave := c.octave + dir*n
	if octave < 1 || octave > 8 {
		return newErr(ErrOctave, c.lineNo, col, "octave step leaves range 1..8 (got %d)", octave)
	}
	c.octave = octave
	return nil
}

func (c *ChannelCompiler) cmdVolume(s *mml.Scanner, col int) error {
	s.SkipSpace()
	n, ok := s.ParseUnsigned()
	if !ok || n > 15 {
		return c.funcRange(col, "V requires a value in 0..15")
	}
	return c.out.EmitByte(bytecode.VolumeByte(int(n)))
}

func (c *ChannelCompiler) cmdVolDown(s *mml.Scanner, col int) error {
	n := parseUnsignedDefault1(s)
	if n < 1 || n > 15 {
		return c.funcRange(col, "( requires a value in 1..15")
	}
	return c.out.EmitByte(bytecode.VolDownByte(int(n)))
}

func (c *ChannelCompiler) cmdVolUp(s *mml.Scanner, col int) error {
	n := parseUnsignedDefault1(s)
	if n < 1 || n > 15 {
		return c.funcRange(col, ") requires a value in 1..15")
	}
	return c.out.EmitByte(bytecode.VolUpByte(int(n)))
}

func (c *ChannelCompiler) cmdUserI(s *mml.Scanner, col int) error {
	s.SkipSpace()
	n, ok := s.ParseUnsigned()
	if !ok || n > 255 {
		return c.funcRange(col, "I requires a value in 0..255")
	}
	if err := c.out.EmitByte(bytecode.OpUserI); err != nil {
		return err
	}
	return c.out.EmitByte(byte(n))
}

func (c *ChannelCompiler) cmdReplayFromTop(col int) error {
	if c.nestDepth != 0 {
		return c.returnInNest(col, "J")
	}
	return c.out.EmitByte(bytecode.OpReplayFromTop)
}

func (c *ChannelCompiler) cmdLength(s *mml.Scanner, col int) error {
	plus := false
	if r, ok := s.Peek(); ok && r == '+' {
		s.Advance()
		plus = true
	}

	ticks, flags, err := mml.ResolveLength(s, c.lLen96, c.lpLen96)
	if err != nil {
		return c.funcRange(col, "%s", err.Error())
	}
	if flags&(mml.ParaNoValue|mml.ParaMinus) != 0 {
		return c.funcRange(col, "L%s requires an explicit positive length", lPlusSuffix(plus))
	}
	if ticks < 1 || ticks > 255 {
		return c.funcRange(col, "L%s length %d out of range 1..255", lPlusSuffix(plus), ticks)
	}

	if plus {
		c.lpLen96 = ticks
		if err := c.out.EmitByte(bytecode.OpLPlus); err != nil {
			return err
		}
	} else {
		c.lLen96 = ticks
		if err := c.out.EmitByte(bytecode.OpL); err != nil {
			return err
		}
	}
	return c.out.EmitByte(byte(ticks))
}

func lPlusSuffix(plus bool) string {
	if plus {
		return "+"
	}
	return ""
}

// expectComma skips whitespace and consumes a ',' separator between
// command arguments. A line that ends where the separator belongs means
// the remaining values are missing (a range error); any other character
// there is a syntax error.
func (c *ChannelCompiler) expectComma(s *mml.Scanner, col int) error {
	s.SkipSpace()
	r, ok := s.Peek()
	if !ok {
		return c.funcRange(col, "missing comma-separated value")
	}
	if r != ',' {
		return c.syntaxErr(col, "expected ','")
	}
	s.Advance()
	return nil
}

func (c *ChannelCompiler) cmdVibrato(s *mml.Scanner, col int) error {
	if r, ok := s.Peek(); ok && r == '%' {
		s.Advance()
		s.SkipSpace()
		n, ok := s.ParseSigned()
		if !ok || n < -127 || n > 127 {
			return c.funcRange(col, "M%% requires a value in -127..127")
		}
		if err := c.out.EmitByte(bytecode.OpVibratoParam4); err != nil {
			return err
		}
		return c.out.EmitByte(bytecode.SignMagnitude(n))
	}

	s.SkipSpace()
	n1, ok := s.ParseUnsigned()
	if !ok {
		return c.funcRange(col, "M requires 4 comma-separated values")
	}
	if err := c.expectComma(s, col); err != nil {
		return err
	}
	s.SkipSpace()
	n2, ok := s.ParseUnsigned()
	if !ok {
		return c.funcRange(col, "M requires 4 comma-separated values")
	}
	if err := c.expectComma(s, col); err != nil {
		return err
	}
	s.SkipSpace()
	n3, ok := s.ParseUnsigned()
	if !ok {
		return c.funcRange(col, "M requires 4 comma-separated values")
	}
	if err := c.expectComma(s, col); err != nil {
		return err
	}
	s.SkipSpace()
	n4, ok := s.ParseSigned()
	if !ok || n4 < -127 || n4 > 127 {
		return c.funcRange(col, "M fourth value must be in -127..127")
	}

	if err := c.out.EmitByte(bytecode.OpVibrato); err != nil {
		return err
	}
	if err := c.out.EmitByte(byte(n1)); err != nil {
		return err
	}
	if err := c.out.EmitByte(byte(n2)); err != nil {
		return err
	}
	if err := c.out.EmitByte(byte(n3)); err != nil {
		return err
	}
	return c.out.EmitByte(bytecode.SignMagnitude(n4))
}

func (c *ChannelCompiler) cmdNoiseMode(s *mml.Scanner, col int) error {
	s.SkipSpace()
	n, ok := s.ParseUnsigned()
	if !ok || n < 1 || n > 3 {
		return c.funcRange(col, "P requires a value in 1,2,3")
	}
	switch n {
	case 1:
		return c.out.EmitByte(bytecode.OpNoiseMode1)
	case 2:
		return c.out.EmitByte(bytecode.OpNoiseMode2)
	default:
		return c.out.EmitByte(bytecode.OpNoiseMode3)
	}
}

func (c *ChannelCompiler) cmdQuantize(s *mml.Scanner, col int) error {
	s.SkipSpace()
	n, ok := s.ParseUnsigned()
	if !ok || n > 255 {
		return c.funcRange(col, "Q requires a value in 0..255")
	}
	if err := c.out.EmitByte(bytecode.OpQuantize); err != nil {
		return err
	}
	return c.out.EmitByte(byte(n))
}

// cmdEnvelope implements S n1,n2,n3,n4,n5, matching
// original_source/mml_compiler.c's 'S' case exactly: all five values
// are always required and parsed (n1, n3, n4 signed; n2 unsigned; n5
// signed and sign-magnitude encoded), regardless of n1's value. n1 is
// always emitted as a raw truncated byte; n2..n4 are also raw
// truncated bytes but are only emitted — along with n5 — when n1 is
// non-zero (n1 == 0 means envelope off, and the remaining parameters
// carry no meaning on the wire).
func (c *ChannelCompiler) cmdEnvelope(s *mml.Scanner, col int) error {
	s.SkipSpace()
	n1, ok := s.ParseSigned()
	if !ok {
		return c.funcRange(col, "S requires 5 comma-separated values")
	}
	if err := c.expectComma(s, col); err != nil {
		return err
	}
	s.SkipSpace()
	n2, ok := s.ParseUnsigned()
	if !ok {
		return c.funcRange(col, "S requires 5 comma-separated values")
	}
	if err := c.expectComma(s, col); err != nil {
		return err
	}
	s.SkipSpace()
	n3, ok := s.ParseSigned()
	if !ok {
		return c.funcRange(col, "S requires 5 comma-separated values")
	}
	if err := c.expectComma(s, col); err != nil {
		return err
	}
	s.SkipSpace()
	n4, ok := s.ParseSigned()
	if !ok {
		return c.funcRange(col, "S requires 5 comma-separated values")
	}
	if err := c.expectComma(s, col); err != nil {
		return err
	}
	s.SkipSpace()
	n5, ok := s.ParseSigned()
	if !ok {
		return c.funcRange(col, "S requires 5 comma-separated values")
	}

	if err := c.out.EmitByte(bytecode.OpEnvelope); err != nil {
		return err
	}
	if err := c.out.EmitByte(byte(n1)); err != nil {
		return err
	}
	if n1 == 0 {
		return nil
	}
	if err := c.out.EmitByte(byte(n2)); err != nil {
		return err
	}
	if err := c.out.EmitByte(byte(n3)); err != nil {
		return err
	}
	if err := c.out.EmitByte(byte(n4)); err != nil {
		return err
	}
	return c.out.EmitByte(bytecode.SignMagnitude(n5))
}

func (c *ChannelCompiler) cmdTempo(s *mml.Scanner, col int) error {
	s.SkipSpace()
	n1, ok := s.ParseUnsigned()
	if !ok || n1 < 1 || n1 > 255 {
		return c.funcRange(col, "T requires a first value in 1..255")
	}
	if err := c.expectComma(s, col); err != nil {
		return err
	}
	s.SkipSpace()
	n2, ok := s.ParseUnsigned()
	if !ok || n2 > 255 {
		return c.funcRange(col, "T requires a second value in 0..255")
	}
	if err := c.out.EmitByte(bytecode.OpTempo); err != nil {
		return err
	}
	if err := c.out.EmitByte(byte(n1)); err != nil {
		return err
	}
	return c.out.EmitByte(byte(n2))
}

func (c *ChannelCompiler) cmdDetune(s *mml.Scanner, col int) error {
	r, ok := s.Peek()
	if !ok {
		return c.funcRange(col, "U requires %%, +, or -")
	}
	switch r {
	case '%':
		s.Advance()
		s.SkipSpace()
		n, ok := s.ParseSigned()
		if !ok || n < -127 || n > 127 {
			return c.funcRange(col, "U%% requires a value in -127..127")
		}
		if err := c.out.EmitByte(bytecode.OpDetuneAbs); err != nil {
			return err
		}
		return c.out.EmitByte(bytecode.SignMagnitude(n))
	case '+', '-':
		s.Advance()
		n, ok := s.ParseUnsigned()
		if !ok {
			return c.funcRange(col, "U%c requires a value", r)
		}
		val := int32(n)
		if r == '-' {
			val = -val
		}
		if val < -127 || val > 127 {
			return c.funcRange(col, "U%c value out of range -127..127", r)
		}
		if err := c.out.EmitByte(bytecode.OpDetuneRel); err != nil {
			return err
		}
		return c.out.EmitByte(byte(int8(val)))
	default:
		return c.funcRange(col, "U requires %%, +, or -")
	}
}

func (c *ChannelCompiler) cmdNoiseFreq(s *mml.Scanner, col int) error {
	r, ok := s.Peek()
	if ok && (r == '+' || r == '-') {
		s.Advance()
		n, ok := s.ParseUnsigned()
		if !ok {
			return c.funcRange(col, "W%c requires a value", r)
		}
		val := int32(n)
		if r == '-' {
			val = -val
		}
		if val < -31 || val > 31 {
			return c.funcRange(col, "W%c value out of range -31..31", r)
		}
		if err := c.out.EmitByte(bytecode.OpNoiseFreqRel); err != nil {
			return err
		}
		return c.out.EmitByte(byte(int8(val)))
	}

	s.SkipSpace()
	n, ok := s.ParseUnsigned()
	if !ok || n > 31 {
		return c.funcRange(col, "W requires a value in 0..31")
	}
	if err := c.out.EmitByte(bytecode.OpNoiseFreqAbs); err != nil {
		return err
	}
	return c.out.EmitByte(byte(n))
}

func (c *ChannelCompiler) cmdStop(s *mml.Scanner, col int) error {
	if c.nestDepth != 0 {
		return c.returnInNest(col, "X")
	}
	if err := c.out.EmitByte(bytecode.OpStop); err != nil {
		return err
	}
	s.SkipToEnd()
	return nil
}

func (c *ChannelCompiler) cmdKeyShift(s *mml.Scanner, col int) error {
	s.SkipSpace()
	n, ok := s.ParseSigned()
	if !ok || n < -12 || n > 12 {
		return c.funcRange(col, "_ requires a value in -12..12")
	}
	c.keyShift = int(n)
	return nil
}

func (c *ChannelCompiler) returnInNest(col int, cmd string) error {
	c.nestDepth = 0
	return newErr(ErrReturnInNest, c.lineNo, col, "%s is not allowed inside a loop", cmd)
}
