// Package float packs float32 values into little-endian record bytes.
package float

import (
	"encoding/binary"
	"math"
)

// LittleEndianBytes returns f as consecutive little-endian IEEE-754 values.
func LittleEndianBytes(f []float32) []byte {
	b := make([]byte, 4*len(f))
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

// Records packs xyz triples as 12 byte records.
func Records(xyz ...[3]float32) []byte {
	b := make([]byte, 0, 12*len(xyz))
	for _, v := range xyz {
		b = append(b, LittleEndianBytes(v[:])...)
	}
	return b
}
