package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_ByteAndWord(t *testing.T) {
	e := New(16, 4)
	require.NoError(t, e.EmitByte(0xAB))
	require.NoError(t, e.EmitWordLE(0x1234))
	assert.Equal(t, []byte{0xAB, 0x34, 0x12}, e.Bytes())
	assert.Equal(t, 3, e.Len())
}

func TestEmitter_OctaveLazy(t *testing.T) {
	e := New(16, 4)
	assert.Equal(t, 4, e.OctaveLast())
	require.NoError(t, e.EmitOctave(5))
	assert.Equal(t, 5, e.OctaveLast())
	assert.Equal(t, byte(0x85), e.Bytes()[0])
}

func TestEmitter_OctaveRange(t *testing.T) {
	e := New(16, 4)
	assert.Error(t, e.EmitOctave(0))
	assert.Error(t, e.EmitOctave(9))
}

func TestEmitter_OverflowIsInternalError(t *testing.T) {
	e := New(2, 4)
	require.NoError(t, e.EmitByte(1))
	require.NoError(t, e.EmitByte(2))
	assert.Error(t, e.EmitByte(3))
}

func TestEmitter_Patch(t *testing.T) {
	e := New(16, 4)
	require.NoError(t, e.EmitByte(0x00))
	require.NoError(t, e.EmitWordLE(0x0000))
	e.PatchByte(0, 0x7F)
	e.PatchWordLE(1, 0xBEEF)
	assert.Equal(t, []byte{0x7F, 0xEF, 0xBE}, e.Bytes())
}

func TestSignMagnitude(t *testing.T) {
	assert.Equal(t, byte(5), SignMagnitude(5))
	assert.Equal(t, byte(0x80|5), SignMagnitude(-5))
	assert.Equal(t, byte(0), SignMagnitude(0))
}
