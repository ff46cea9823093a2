package pcd

import (
	"math"

	"github.com/seqsense/pcgol/mat"
)

// Vertex is a single 3D sample.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IsFinite reports whether all coordinates are neither NaN nor infinite.
func (v Vertex) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func (v Vertex) Vec3() mat.Vec3 {
	return mat.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func VertexFromVec3(v mat.Vec3) Vertex {
	return Vertex{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Vertices is a vertex sequence in decode order.
type Vertices []Vertex

func (vs Vertices) Len() int {
	return len(vs)
}

func (vs Vertices) Vec3At(i int) mat.Vec3 {
	return vs[i].Vec3()
}

// PointCloud is a decoded vertex sequence tagged with its source.
type PointCloud struct {
	Name     string
	Size     int64
	Kind     Kind
	Vertices Vertices
}
