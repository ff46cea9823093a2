package pcd

import (
	"io"

	"github.com/pkg/errors"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/filter/voxelgrid"
)

// ToPointCloud packs vs into an x y z float32 cloud.
func ToPointCloud(vs Vertices) (*pc.PointCloud, error) {
	pp := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version:   0.7,
			Fields:    []string{"x", "y", "z"},
			Size:      []int{4, 4, 4},
			Type:      []string{"F", "F", "F"},
			Count:     []int{1, 1, 1},
			Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
			Width:     len(vs),
			Height:    1,
		},
		Points: len(vs),
	}
	pp.Data = make([]byte, len(vs)*pp.Stride())
	if len(vs) == 0 {
		return pp, nil
	}

	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	for _, v := range vs {
		it.SetVec3(v.Vec3())
		it.Incr()
	}
	return pp, nil
}

// FromPointCloud reads the x, y and z fields of pp.
func FromPointCloud(pp *pc.PointCloud) (Vertices, error) {
	if pp.Points == 0 {
		return Vertices{}, nil
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	vs := make(Vertices, 0, it.Len())
	for ; it.IsValid(); it.Incr() {
		vs = append(vs, VertexFromVec3(it.Vec3()))
	}
	return vs, nil
}

// WritePCD writes vs as a binary PCD file.
func WritePCD(w io.Writer, vs Vertices) error {
	pp, err := ToPointCloud(vs)
	if err != nil {
		return err
	}
	return errors.Wrap(pc.Marshal(pp, w), "writing pcd")
}

// Downsample replaces the vertices in each cubic voxel of the given edge
// length by their centroid.
func Downsample(vs Vertices, leaf float64) (Vertices, error) {
	if !(leaf > 0) || !isFinite(leaf) {
		return nil, errors.Errorf("invalid voxel size %g", leaf)
	}
	if len(vs) == 0 {
		return Vertices{}, nil
	}
	pp, err := ToPointCloud(vs)
	if err != nil {
		return nil, err
	}
	l := float32(leaf)
	filtered, err := voxelgrid.New(mat.Vec3{l, l, l}).Filter(pp)
	if err != nil {
		return nil, errors.Wrap(err, "voxel grid filter")
	}
	return FromPointCloud(filtered)
}
