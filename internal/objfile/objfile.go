// Package objfile assembles the three compiled channel bytecode
// streams into the driver's binary object file: an 8-byte
// little-endian header of channel start addresses followed by the
// concatenated streams, per spec.md section 6.
package objfile

import "encoding/binary"

const (
	headerSize  = 8
	numChannels = 3
)

// Assemble builds the object file for the three channel streams,
// placing channel 1 at base+8, channel 2 immediately after it, and
// channel 3 after that. The two unused header bytes are left zero.
func Assemble(base uint16, channels [numChannels][]byte) []byte {
	total := headerSize
	for _, ch := range channels {
		total += len(ch)
	}

	out := make([]byte, total)

	addr := base + headerSize
	binary.LittleEndian.PutUint16(out[0:2], addr)
	addr += uint16(len(channels[0]))
	binary.LittleEndian.PutUint16(out[2:4], addr)
	addr += uint16(len(channels[1]))
	binary.LittleEndian.PutUint16(out[4:6], addr)

	pos := headerSize
	for _, ch := range channels {
		copy(out[pos:], ch)
		pos += len(ch)
	}
	return out
}
