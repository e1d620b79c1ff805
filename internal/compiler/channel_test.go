package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileOK compiles a single line against a fresh channel and
// returns the finished bytecode, failing the test on any error.
func compileOK(t *testing.T, text string) []byte {
	t.Helper()
	c := New()
	require.NoError(t, c.CompileLine(1, text))
	require.NoError(t, c.FinishChannel())
	return c.Bytes()
}

func TestScenario_BareNote(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0xFF}, compileOK(t, "c"))
}

func TestScenario_SetLengthThenNote(t *testing.T) {
	assert.Equal(t, []byte{0xF9, 0x0C, 0x01, 0xFF}, compileOK(t, "L8 c"))
}

func TestScenario_NoteWithExplicitLength(t *testing.T) {
	assert.Equal(t, []byte{0x21, 0x0C, 0xFF}, compileOK(t, "c8"))
}

func TestScenario_Loop(t *testing.T) {
	assert.Equal(t, []byte{0xF0, 0x03, 0x01, 0x03, 0xF1, 0xFC, 0xFF}, compileOK(t, "[ c d ]3"))
}

func TestScenario_Tie(t *testing.T) {
	assert.Equal(t, []byte{0x41, 0x03, 0xFF}, compileOK(t, "c&d"))
}

func TestScenario_OctaveChange(t *testing.T) {
	assert.Equal(t, []byte{0x85, 0x01, 0xFF}, compileOK(t, "O5 c"))
}

func TestBoundary_LengthDenominators(t *testing.T) {
	assert.Equal(t, []byte{0xF9, 0x01, 0xFF}, compileOK(t, "L96"))
	assert.Equal(t, []byte{0xF9, 0x60, 0xFF}, compileOK(t, "L1"))
}

func TestBoundary_DotOnOddBaseRejected(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "L32.")
	require.Error(t, err)
	assert.Equal(t, ErrFuncRange, err.(*CompileError).Kind)
}

func TestBoundary_LoopCountMustBeAtLeast2(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "[c]1")
	require.Error(t, err)

	c2 := New()
	require.NoError(t, c2.CompileLine(1, "[c]2"))
}

func TestBoundary_NestingDepthLimit(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "[[[[[c]2]2]2]2]2")
	require.Error(t, err)
	assert.Equal(t, ErrFuncRange, err.(*CompileError).Kind)
}

func TestBoundary_NoteOverflowAfterTransposition(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "_12 o8 b")
	require.Error(t, err)
	assert.Equal(t, ErrNoteOverflow, err.(*CompileError).Kind)
}

func TestFinishChannel_UnclosedLoopIsCloseNestError(t *testing.T) {
	c := New()
	require.NoError(t, c.CompileLine(1, "[c"))
	err := c.FinishChannel()
	require.Error(t, err)
	assert.Equal(t, ErrCloseNest, err.(*CompileError).Kind)
}

func TestFirstErrorSticks(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "q300 c")
	require.Error(t, err)
	// Second line must not override the first recorded error.
	err2 := c.CompileLine(2, "c")
	assert.Equal(t, err, err2)
}

func TestLoopBreak_RestoresStateAfterClose(t *testing.T) {
	// Inside the loop body after ':' the octave changes; after ']'
	// the channel must be back at the pre-':' octave.
	c := New()
	require.NoError(t, c.CompileLine(1, "[ c : O6 c ]2"))
	require.NoError(t, c.FinishChannel())
	assert.Equal(t, 4, c.octave)
}

func TestLoopBreak_DuplicateExitIsError(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "[ c : d : e ]2")
	require.Error(t, err)
	assert.Equal(t, ErrDupExit, err.(*CompileError).Kind)
}

func TestLoop_OutOfNestErrors(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "]2")
	require.Error(t, err)
	assert.Equal(t, ErrOutOfNest, err.(*CompileError).Kind)

	c2 := New()
	err2 := c2.CompileLine(1, ":")
	require.Error(t, err2)
	assert.Equal(t, ErrOutOfNest, err2.(*CompileError).Kind)
}

func TestCommand_ReturnInNest(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "[ X ]2")
	require.Error(t, err)
	assert.Equal(t, ErrReturnInNest, err.(*CompileError).Kind)

	c2 := New()
	err2 := c2.CompileLine(1, "[ J ]2")
	require.Error(t, err2)
	assert.Equal(t, ErrReturnInNest, err2.(*CompileError).Kind)
}
