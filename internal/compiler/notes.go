package compiler

import "github.com/andkrau/p6psgmmlc-go/internal/mml"

// toneOf maps an uppercased note letter to its semitone number within
// an octave (C=1 .. B=12); R (rest) is handled by the caller as tone 0.
var toneOf = map[rune]int{
	'C': 1, 'D': 3, 'E': 5, 'F': 6, 'G': 8, 'A': 10, 'B': 12,
}

const (
	hdrTieBit        = 0x40
	hdrLenMatchesL   = 0x00
	hdrLenMatchesLP  = 0x10
	hdrLenOneByte    = 0x20
	hdrLenTwoByte    = 0x30
)

// compileNote implements spec.md section 4.5's note/rest handler: tone
// resolution, accidental, key-shift transposition with octave carry,
// length resolution, tie, and the lazy octave byte followed by the
// note header.
func (c *ChannelCompiler) compileNote(s *mml.Scanner, letter rune, col int) error {
	tone := 0
	if letter != 'R' {
		tone = toneOf[letter]

		if r, ok := s.Peek(); ok && (r == '#' || r == '+') {
			s.Advance()
			tone++
		} else if ok && r == '-' {
			s.Advance()
			tone--
		}
		if tone > 12 {
			tone = 12
		}
		if tone < 1 {
			tone = 1
		}

		octave := c.octave
		shifted := tone + c.keyShift
		if shifted > 12 {
			shifted -= 12
			octave++
		} else if shifted < 1 {
			shifted += 12
			octave--
		}
		tone = shifted

		if octave < 1 || octave > 8 {
			return newErr(ErrNoteOverflow, c.lineNo, col, "note octave %d out of range 1..8 after transposition", octave)
		}
		c.octave = octave
	}

	ticks, flags, err := mml.ResolveLength(s, c.lLen96, c.lpLen96)
	if err != nil {
		return c.funcRange(col, "%s", err.Error())
	}
	if flags&(mml.ParaPlus|mml.ParaMinus) != 0 {
		return c.funcRange(col, "note length may not carry a sign")
	}

	tie := false
	if r, ok := s.Peek(); ok && r == '&' {
		s.Advance()
		tie = true
	}

	if c.octave != c.out.OctaveLast() {
		if err := c.out.EmitOctave(c.octave); err != nil {
			return err
		}
	}

	header := byte(tone)
	if tie {
		header |= hdrTieBit
	}

	switch {
	case ticks == c.lLen96:
		header |= hdrLenMatchesL
		return c.out.EmitByte(header)
	case ticks == c.lpLen96:
		header |= hdrLenMatchesLP
		return c.out.EmitByte(header)
	case ticks <= 255:
		header |= hdrLenOneByte
		if err := c.out.EmitByte(header); err != nil {
			return err
		}
		return c.out.EmitByte(byte(ticks))
	default:
		header |= hdrLenTwoByte
		if err := c.out.EmitByte(header); err != nil {
			return err
		}
		return c.out.EmitWordLE(ticks)
	}
}
