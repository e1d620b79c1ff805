package mml

import "fmt"

// validDenominators is the set of note-length denominators accepted when
// no '%' prefix is present: 96/n must be an exact duration in ticks.
var validDenominators = map[uint16]bool{
	1: true, 2: true, 3: true, 4: true, 6: true, 8: true,
	12: true, 16: true, 24: true, 32: true, 48: true, 96: true,
}

// ResolveLength reads one length specification starting at the
// scanner's current position: an optional PARA prefix selecting either
// a direct tick count ('%nnn'), a denominator ('n'), or the channel's
// current default length (no value at all); then a run of augmentation
// dots; then zero or more '^'-joined continuations. It returns the
// total duration in 96ths-of-a-whole-note and the PARA flags observed
// on the leading operand, so callers (L, L+, notes) can reject flag
// combinations that don't make sense for them (e.g. a note length may
// not carry '+' or '-').
func ResolveLength(s *Scanner, lLen96, lpLen96 uint16) (ticks uint16, flags ParaFlags, err error) {
	para := ParsePara(s)
	flags = para.Flags

	var base uint16
	switch {
	case para.Flags&ParaPercent != 0:
		if para.Flags&ParaNoValue != 0 {
			return 0, flags, fmt.Errorf("%%-length requires a value")
		}
		if para.Value < 1 || para.Value > 255 {
			return 0, flags, fmt.Errorf("%%-length %d out of range 1..255", para.Value)
		}
		base = para.Value
	case para.Flags&ParaNoValue != 0:
		base = lLen96
	default:
		if !validDenominators[para.Value] {
			return 0, flags, fmt.Errorf("invalid length denominator %d", para.Value)
		}
		base = 96 / para.Value
	}

	total, err := applyDots(s, base)
	if err != nil {
		return 0, flags, err
	}

	for {
		s.SkipSpace()
		r, ok := s.Peek()
		if !ok || r != '^' {
			break
		}
		s.Advance()
		extra, _, err := ResolveLength(s, lLen96, lpLen96)
		if err != nil {
			return 0, flags, err
		}
		total += uint32(extra)
	}

	if total < 1 || total > 32767 {
		return 0, flags, fmt.Errorf("length %d out of range 1..32767", total)
	}
	return uint16(total), flags, nil
}

// applyDots consumes a run of augmentation dots following a base
// duration. Each dot adds half of the currently accumulated half; if
// that half is odd (not evenly halvable) the dot is rejected as "not
// playable".
func applyDots(s *Scanner, base uint16) (uint32, error) {
	total := uint32(base)
	half := base
	for {
		s.SkipSpace()
		r, ok := s.Peek()
		if !ok || r != '.' {
			break
		}
		s.Advance()
		if half%2 != 0 {
			return 0, fmt.Errorf("dot not playable at this length")
		}
		half /= 2
		total += uint32(half)
	}
	return total, nil
}
