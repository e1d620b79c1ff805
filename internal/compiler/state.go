package compiler

import (
	"bytes"
	"encoding/gob"
)

// loopStateSnapshot is the gob-exportable mirror of loopState; gob
// cannot encode loopState's unexported fields directly.
type loopStateSnapshot struct {
	LoopStart, ExitMark             int
	HasExit                         bool
	SavedLLen96, SavedLpLen96       uint16
	SavedOctave, SavedOctaveLast    int
}

// channelState is the gob-serializable snapshot of a ChannelCompiler's
// compile-time bookkeeping, used by SaveState/LoadState for golden-file
// tests. It never carries the emitted bytecode stream itself, matching
// the way a save state is a snapshot of control state, not output.
type channelState struct {
	LLen96, LpLen96  uint16
	Octave, KeyShift int
	NestDepth        int
	Loops            [maxNestDepth]loopStateSnapshot
	OctaveLast       int
}

// SaveState returns a gob encoding of the channel's compile-time state,
// for test fixtures that assert a compiler resumes identically after a
// save/restore round trip.
func (c *ChannelCompiler) SaveState() []byte {
	var buf bytes.Buffer
	s := channelState{
		LLen96: c.lLen96, LpLen96: c.lpLen96,
		Octave: c.octave, KeyShift: c.keyShift,
		NestDepth:  c.nestDepth,
		OctaveLast: c.out.OctaveLast(),
	}
	for i, l := range c.loops {
		s.Loops[i] = loopStateSnapshot{
			LoopStart: l.loopStart, ExitMark: l.exitMark, HasExit: l.hasExit,
			SavedLLen96: l.savedLLen96, SavedLpLen96: l.savedLpLen96,
			SavedOctave: l.savedOctave, SavedOctaveLast: l.savedOctaveLast,
		}
	}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

// LoadState restores compile-time state saved by SaveState. The
// emitted bytecode stream is untouched; only the bookkeeping fields a
// subsequent CompileLine call would consult are overwritten.
func (c *ChannelCompiler) LoadState(data []byte) error {
	var s channelState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	c.lLen96, c.lpLen96 = s.LLen96, s.LpLen96
	c.octave, c.keyShift = s.Octave, s.KeyShift
	c.nestDepth = s.NestDepth
	for i, l := range s.Loops {
		c.loops[i] = loopState{
			loopStart: l.LoopStart, exitMark: l.ExitMark, hasExit: l.HasExit,
			savedLLen96: l.SavedLLen96, savedLpLen96: l.SavedLpLen96,
			savedOctave: l.SavedOctave, savedOctaveLast: l.SavedOctaveLast,
		}
	}
	c.out.SetOctaveLast(s.OctaveLast)
	return nil
}
