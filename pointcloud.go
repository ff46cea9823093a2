package main

import (
	"math"

	"github.com/seqsense/pcdviewer/pcd"
)

// renderBuffers holds the vertex attributes uploaded to the GPU.
type renderBuffers struct {
	positions []float32
	colors    []float32
	n         int
}

// newRenderBuffers flattens out into attribute buffers. Vertices are white
// when out has no color assignment.
func newRenderBuffers(out *pcd.Output) renderBuffers {
	n := len(out.Vertices)
	colors := out.ColorBuffer()
	if colors == nil {
		colors = make([]float32, 3*n)
		for i := range colors {
			colors[i] = 1
		}
	}
	return renderBuffers{
		positions: out.Positions(),
		colors:    colors,
		n:         n,
	}
}

// pointSizeBase converts a point size in world units into the shader's
// pixel scale, which is divided by the view distance of each vertex.
func pointSizeBase(size, fov float64, height int) float32 {
	return float32(size * float64(height) / (2 * math.Tan(fov/2)))
}
