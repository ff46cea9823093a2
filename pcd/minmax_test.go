package pcd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComputeMetadata(t *testing.T) {
	testCases := map[string]struct {
		vs       Vertices
		expected Metadata
	}{
		"Points": {
			vs: Vertices{
				{X: 10.1, Y: -20.2, Z: 3.3},
				{X: 1.1, Y: 2.2, Z: 4.3},
				{X: 15.1, Y: 21.2, Z: 0.3},
			},
			expected: Metadata{
				PointCount: 3,
				BoundingBox: &BoundingBox{
					MinX: 1.1, MaxX: 15.1,
					MinY: -20.2, MaxY: 21.2,
					MinZ: 0.3, MaxZ: 4.3,
				},
			},
		},
		"Mixed": {
			vs: Vertices{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9}},
			expected: Metadata{
				PointCount: 3,
				BoundingBox: &BoundingBox{
					MinX: 1, MaxX: 7,
					MinY: 2, MaxY: 8,
					MinZ: 3, MaxZ: 9,
				},
			},
		},
		"Single": {
			vs: Vertices{{X: -1, Y: 0, Z: 1}},
			expected: Metadata{
				PointCount: 1,
				BoundingBox: &BoundingBox{
					MinX: -1, MaxX: -1,
					MinY: 0, MaxY: 0,
					MinZ: 1, MaxZ: 1,
				},
			},
		},
		"Empty": {
			vs:       Vertices{},
			expected: Metadata{},
		},
		"Nil": {
			expected: Metadata{},
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			m := ComputeMetadata(tt.vs)
			if diff := cmp.Diff(tt.expected, m); diff != "" {
				t.Errorf("Metadata differ (-want +got):\n%s", diff)
			}
			if m.IsEmpty() != (len(tt.vs) == 0) {
				t.Errorf("IsEmpty must be %v", len(tt.vs) == 0)
			}
			if b := m.BoundingBox; b != nil {
				if b.MinX > b.MaxX || b.MinY > b.MaxY || b.MinZ > b.MaxZ {
					t.Errorf("min must not exceed max: %+v", *b)
				}
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	b := BoundingBox{MinX: -2, MaxX: 4, MinY: 0, MaxY: 10, MinZ: 1, MaxZ: 1}
	if c := b.Center(); c != (Vertex{X: 1, Y: 5, Z: 1}) {
		t.Errorf("Unexpected center: %v", c)
	}
	if s := b.Size(); s != (Vertex{X: 6, Y: 10, Z: 0}) {
		t.Errorf("Unexpected size: %v", s)
	}
}
