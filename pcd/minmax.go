package pcd

import (
	"math"
)

// BoundingBox is the axis-aligned box containing all vertices.
type BoundingBox struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

func (b BoundingBox) Min() Vertex {
	return Vertex{X: b.MinX, Y: b.MinY, Z: b.MinZ}
}

func (b BoundingBox) Max() Vertex {
	return Vertex{X: b.MaxX, Y: b.MaxY, Z: b.MaxZ}
}

func (b BoundingBox) Center() Vertex {
	return Vertex{
		X: b.MinX/2 + b.MaxX/2,
		Y: b.MinY/2 + b.MaxY/2,
		Z: b.MinZ/2 + b.MaxZ/2,
	}
}

// Size returns the extent along each axis.
func (b BoundingBox) Size() Vertex {
	return Vertex{X: b.MaxX - b.MinX, Y: b.MaxY - b.MinY, Z: b.MaxZ - b.MinZ}
}

// Metadata summarizes a vertex sequence.
// BoundingBox is nil if and only if PointCount is zero.
type Metadata struct {
	PointCount  int          `json:"pointCount"`
	BoundingBox *BoundingBox `json:"boundingBox"`
}

// IsEmpty reports whether there is no vertex to bound.
func (m Metadata) IsEmpty() bool {
	return m.BoundingBox == nil
}

// ComputeMetadata scans vs once.
func ComputeMetadata(vs Vertices) Metadata {
	if len(vs) == 0 {
		return Metadata{}
	}
	b := BoundingBox{
		MinX: math.MaxFloat64, MinY: math.MaxFloat64, MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64, MaxY: -math.MaxFloat64, MaxZ: -math.MaxFloat64,
	}
	for _, v := range vs {
		b.MinX = math.Min(b.MinX, v.X)
		b.MaxX = math.Max(b.MaxX, v.X)
		b.MinY = math.Min(b.MinY, v.Y)
		b.MaxY = math.Max(b.MaxY, v.Y)
		b.MinZ = math.Min(b.MinZ, v.Z)
		b.MaxZ = math.Max(b.MaxZ, v.Z)
	}
	return Metadata{PointCount: len(vs), BoundingBox: &b}
}
