package pcd

import (
	"encoding/binary"
	"math"
)

// recordIterator walks fixed-stride little-endian records.
type recordIterator struct {
	data   []byte
	pos    int
	end    int
	layout recordLayout
}

func newRecordIterator(data []byte, layout recordLayout, first, last int) *recordIterator {
	return &recordIterator{
		data:   data,
		pos:    first * layout.stride,
		end:    last * layout.stride,
		layout: layout,
	}
}

func (i *recordIterator) Incr() {
	i.pos += i.layout.stride
}

func (i *recordIterator) IsValid() bool {
	return i.pos+i.layout.stride <= i.end && i.pos+i.layout.stride <= len(i.data)
}

func (i *recordIterator) float32At(off int) float32 {
	p := i.pos + off
	return math.Float32frombits(binary.LittleEndian.Uint32(i.data[p : p+4]))
}

// Vertex returns the current record. Values are widened from float32.
func (i *recordIterator) Vertex() Vertex {
	return Vertex{
		X: float64(i.float32At(i.layout.offset[0])),
		Y: float64(i.float32At(i.layout.offset[1])),
		Z: float64(i.float32At(i.layout.offset[2])),
	}
}
