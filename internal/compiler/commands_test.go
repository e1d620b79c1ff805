package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Volume(t *testing.T) {
	assert.Equal(t, []byte{0x9A, 0xFF}, compileOK(t, "V10"))
}

func TestCommand_VolDown(t *testing.T) {
	assert.Equal(t, []byte{0xA3, 0xFF}, compileOK(t, "(3"))
	assert.Equal(t, []byte{0xA1, 0xFF}, compileOK(t, "(")) // defaults to 1
}

func TestCommand_VolUp(t *testing.T) {
	assert.Equal(t, []byte{0xB5, 0xFF}, compileOK(t, ")5"))
	assert.Equal(t, []byte{0xB1, 0xFF}, compileOK(t, ")")) // defaults to 1
}

func TestCommand_UserI(t *testing.T) {
	assert.Equal(t, []byte{0xF4, 0xC8, 0xFF}, compileOK(t, "I200"))
}

func TestCommand_Vibrato(t *testing.T) {
	assert.Equal(t, []byte{0xF5, 0x01, 0x02, 0x03, 0x04, 0xFF}, compileOK(t, "M1,2,3,4"))
}

func TestCommand_VibratoParam4(t *testing.T) {
	assert.Equal(t, []byte{0xFD, 0x8A, 0xFF}, compileOK(t, "M%-10"))
}

func TestCommand_VibratoToggle(t *testing.T) {
	assert.Equal(t, []byte{0xF6, 0xFF}, compileOK(t, "N"))
}

func TestCommand_NoiseMode(t *testing.T) {
	assert.Equal(t, []byte{0xED, 0xFF}, compileOK(t, "P1"))
	assert.Equal(t, []byte{0xEE, 0xFF}, compileOK(t, "P2"))
	assert.Equal(t, []byte{0xEF, 0xFF}, compileOK(t, "P3"))
}

func TestCommand_Quantize(t *testing.T) {
	assert.Equal(t, []byte{0xFA, 0x40, 0xFF}, compileOK(t, "Q64"))
}

// TestCommand_Envelope_NonZeroFirst reproduces the reference compiler's
// DS-1,0,0,0,0 example: n1 is signed (-1, non-zero), so n2..n4 are
// emitted after it as raw truncated bytes, followed by n5 in
// sign-magnitude form.
func TestCommand_Envelope_NonZeroFirst(t *testing.T) {
	assert.Equal(t, []byte{0xEA, 0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF}, compileOK(t, "S-1,0,0,0,0"))
}

// TestCommand_Envelope_ZeroFirst covers n1 == 0: only n1 itself is
// emitted, n2..n5 are parsed but dropped from the stream.
func TestCommand_Envelope_ZeroFirst(t *testing.T) {
	assert.Equal(t, []byte{0xEA, 0x00, 0xFF}, compileOK(t, "S0,0,0,0,0"))
}

// TestCommand_Envelope_RequiresAllFiveValues covers the case the
// maintainer flagged: all five parameters are mandatory regardless of
// n1, so a short parameter list is a FUNC_RANGE error even when n1 is 0.
func TestCommand_Envelope_RequiresAllFiveValues(t *testing.T) {
	c := New()
	err := c.CompileLine(1, "S0")
	require.Error(t, err)
	assert.Equal(t, ErrFuncRange, err.(*CompileError).Kind)
}

func TestCommand_Tempo(t *testing.T) {
	assert.Equal(t, []byte{0xF8, 0x78, 0x05, 0xFF}, compileOK(t, "T120,5"))
}

func TestCommand_DetuneAbs(t *testing.T) {
	assert.Equal(t, []byte{0xFB, 0xB2, 0xFF}, compileOK(t, "U%-50"))
}

func TestCommand_DetuneRel(t *testing.T) {
	assert.Equal(t, []byte{0xFC, 0x0A, 0xFF}, compileOK(t, "U+10"))
	assert.Equal(t, []byte{0xFC, 0xF6, 0xFF}, compileOK(t, "U-10"))
}

func TestCommand_NoiseFreqAbs(t *testing.T) {
	assert.Equal(t, []byte{0xEB, 0x14, 0xFF}, compileOK(t, "W20"))
}

func TestCommand_NoiseFreqRel(t *testing.T) {
	assert.Equal(t, []byte{0xEC, 0x05, 0xFF}, compileOK(t, "W+5"))
	assert.Equal(t, []byte{0xEC, 0xFB, 0xFF}, compileOK(t, "W-5"))
}

func TestCommand_ReplayFromTop(t *testing.T) {
	assert.Equal(t, []byte{0xFE, 0xFF}, compileOK(t, "J"))
}

func TestCommand_LengthPlus(t *testing.T) {
	assert.Equal(t, []byte{0xF7, 0x30, 0xFF}, compileOK(t, "L+2"))
}
