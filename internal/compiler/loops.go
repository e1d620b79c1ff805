package compiler

import (
	"github.com/andkrau/p6psgmmlc-go/internal/bytecode"
	"github.com/andkrau/p6psgmmlc-go/internal/mml"
)

// cmdLoopOpen implements '[': spec.md section 4.5's loop protocol.
// Depth is bounded at maxNestDepth; the count byte is a placeholder
// until the matching ']' backpatches it.
func (c *ChannelCompiler) cmdLoopOpen(col int) error {
	if c.nestDepth == maxNestDepth {
		c.nestDepth = 0
		return c.funcRange(col, "loop nesting exceeds %d levels", maxNestDepth)
	}
	if err := c.out.EmitByte(bytecode.OpLoopBegin); err != nil {
		return err
	}
	if err := c.out.EmitByte(0x00); err != nil {
		return err
	}

	c.nestDepth++
	c.loops[c.nestDepth-1] = loopState{
		loopStart: c.out.Len(),
		exitMark:  -1,
	}
	return nil
}

// cmdLoopBreak implements ':': at most one per nesting level, marking
// the forward jump target a matching ']' takes when the loop body
// finishes its last iteration. Channel state at this point is
// snapshotted so that the tail between ':' and ']' can freely mutate
// lengths and octave without the change surviving the loop.
func (c *ChannelCompiler) cmdLoopBreak(col int) error {
	if c.nestDepth == 0 {
		return newErr(ErrOutOfNest, c.lineNo, col, ": used outside a loop")
	}
	level := &c.loops[c.nestDepth-1]
	if level.hasExit {
		return newErr(ErrDupExit, c.lineNo, col, "loop already has a ':' at this level")
	}

	if err := c.out.EmitByte(bytecode.OpLoopBreak); err != nil {
		return err
	}
	if err := c.out.EmitWordLE(0); err != nil {
		return err
	}

	level.exitMark = c.out.Len()
	level.hasExit = true
	level.savedLLen96 = c.lLen96
	level.savedLpLen96 = c.lpLen96
	level.savedOctave = c.octave
	level.savedOctaveLast = c.out.OctaveLast()
	return nil
}

// cmdLoopClose implements ']' n: backpatches the loop count, emits the
// back-jump in whichever of the two encodings costs fewer bytes, and
// (if a ':' break was seen) backpatches its forward offset and
// restores the channel state snapshotted there.
func (c *ChannelCompiler) cmdLoopClose(s *mml.Scanner, col int) error {
	if c.nestDepth == 0 {
		return newErr(ErrOutOfNest, c.lineNo, col, "] used outside a loop")
	}

	s.SkipSpace()
	count, ok := s.ParseUnsigned()
	if !ok || count < 2 || count > 255 {
		return c.funcRange(col, "] requires a count in 2..255")
	}

	level := c.loops[c.nestDepth-1]
	c.out.PatchByte(level.loopStart-1, byte(count))

	jumpPos := c.out.Len()
	offset := level.loopStart - (jumpPos + 3)
	if offset >= -256 && offset <= -1 {
		if err := c.out.EmitByte(bytecode.OpLoopBack1); err != nil {
			return err
		}
		if err := c.out.EmitByte(uint8(int32(offset) + 1)); err != nil {
			return err
		}
	} else {
		if err := c.out.EmitByte(bytecode.OpLoopBack2); err != nil {
			return err
		}
		if err := c.out.EmitWordLE(uint16(int32(offset))); err != nil {
			return err
		}
	}

	if level.hasExit {
		colonPos := level.exitMark - 3
		c.out.PatchWordLE(colonPos+1, uint16(int32(jumpPos-(colonPos+3))))
		c.lLen96 = level.savedLLen96
		c.lpLen96 = level.savedLpLen96
		c.octave = level.savedOctave
		c.out.SetOctaveLast(level.savedOctaveLast)
	}

	c.nestDepth--
	return nil
}
