package pcd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/seqsense/pcdviewer/pcd/internal/float"
)

func pcdHeader(points int, data string) string {
	return fmt.Sprintf(`# .PCD v0.7 - Point Cloud Data file format
VERSION 0.7
FIELDS x y z
SIZE 4 4 4
TYPE F F F
COUNT 1 1 1
WIDTH %d
HEIGHT 1
VIEWPOINT 0 0 0 1 0 0 0
POINTS %d
DATA %s
`, points, points, data)
}

func binaryPCD(points int, recs ...[3]float32) []byte {
	return append([]byte(pcdHeader(points, "binary")), float.Records(recs...)...)
}

func grid(n int) ([][3]float32, Vertices) {
	recs := make([][3]float32, n)
	vs := make(Vertices, n)
	for i := range recs {
		x, y, z := float32(i%17), float32(i%5)*0.5, float32(i)*0.25
		recs[i] = [3]float32{x, y, z}
		vs[i] = Vertex{X: float64(x), Y: float64(y), Z: float64(z)}
	}
	return recs, vs
}

func TestDecodeBinary(t *testing.T) {
	opts := DefaultDecodeOptions()
	opts.Logger = zaptest.NewLogger(t)

	t.Run("ThresholdLaw", func(t *testing.T) {
		recs, vs := grid(10)

		_, err := DecodeBinary(binaryPCD(3, recs[:3]...), DialectPCD, opts)
		if !errors.Is(err, ErrInsufficientValidPoints) {
			t.Fatalf("Expected InsufficientValidPoints, got: %v", err)
		}

		res, err := DecodeBinary(binaryPCD(10, recs...), DialectPCD, opts)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(vs, res.Vertices); diff != "" {
			t.Errorf("Vertices differ (-want +got):\n%s", diff)
		}
	})

	t.Run("DropNonFinite", func(t *testing.T) {
		recs, vs := grid(12)
		nan := float32(math.NaN())
		inf := float32(math.Inf(1))
		recs = append(recs, [3]float32{nan, 0, 0}, [3]float32{0, inf, 0})

		res, err := DecodeBinary(binaryPCD(len(recs), recs...), DialectPCD, opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.Dropped != 2 {
			t.Errorf("Expected 2 dropped records, got: %d", res.Dropped)
		}
		if diff := cmp.Diff(vs, res.Vertices); diff != "" {
			t.Errorf("Vertices differ (-want +got):\n%s", diff)
		}
	})

	t.Run("DropBelowThreshold", func(t *testing.T) {
		recs, _ := grid(10)
		recs[4][2] = float32(math.NaN())

		_, err := DecodeBinary(binaryPCD(10, recs...), DialectPCD, opts)
		if !errors.Is(err, ErrInsufficientValidPoints) {
			t.Fatalf("Expected InsufficientValidPoints, got: %v", err)
		}
	})

	t.Run("TrailingBytesIgnored", func(t *testing.T) {
		recs, vs := grid(11)
		data := append(binaryPCD(10, recs...), 0xFF, 0xFF)

		res, err := DecodeBinary(data, DialectPCD, opts)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(vs[:10], res.Vertices); diff != "" {
			t.Errorf("Vertices differ (-want +got):\n%s", diff)
		}
	})

	t.Run("PLY", func(t *testing.T) {
		header := "ply\nformat binary_little_endian 1.0\ncomment test\n" +
			"element vertex 10\nproperty float x\nproperty float y\nproperty float z\n" +
			"property float intensity\nelement face 0\nproperty list uchar int vertex_indices\nend_header\n"
		data := []byte(header)
		_, vs := grid(10)
		for _, v := range vs {
			data = append(data, float.LittleEndianBytes([]float32{
				float32(v.X), float32(v.Y), float32(v.Z), 100,
			})...)
		}
		res, err := DecodeBinary(data, DialectPLY, opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.Header.Stride() != 16 {
			t.Errorf("Expected stride 16, got: %d", res.Header.Stride())
		}
		if diff := cmp.Diff(vs, res.Vertices); diff != "" {
			t.Errorf("Vertices differ (-want +got):\n%s", diff)
		}
	})

	t.Run("BinaryCompressed", func(t *testing.T) {
		_, vs := grid(10)
		// Per-field layout: all x, then all y, then all z.
		cols := make([]float32, 0, 30)
		for _, v := range vs {
			cols = append(cols, float32(v.X))
		}
		for _, v := range vs {
			cols = append(cols, float32(v.Y))
		}
		for _, v := range vs {
			cols = append(cols, float32(v.Z))
		}
		raw := float.LittleEndianBytes(cols)
		comp := lzfLiteral(raw)

		data := []byte(pcdHeader(10, "binary_compressed"))
		data = binary.LittleEndian.AppendUint32(data, uint32(len(comp)))
		data = binary.LittleEndian.AppendUint32(data, uint32(len(raw)))
		data = append(data, comp...)

		res, err := DecodeBinary(data, DialectPCD, opts)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(vs, res.Vertices); diff != "" {
			t.Errorf("Vertices differ (-want +got):\n%s", diff)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		recs, _ := grid(10)
		testCases := map[string]struct {
			data    []byte
			dialect Dialect
			kind    ErrorKind
		}{
			"NoTerminator": {
				data:    []byte("VERSION 0.7\nFIELDS x y z\nPOINTS 10\n"),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"NoCount": {
				data: append([]byte("FIELDS x y z\nSIZE 4 4 4\nTYPE F F F\nDATA binary\n"),
					float.Records(recs...)...),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"Truncated": {
				data:    binaryPCD(20, recs...),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"AsciiBody": {
				data:    []byte(pcdHeader(1, "ascii") + "1 2 3\n"),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"DoubleXYZ": {
				data: []byte("FIELDS x y z\nSIZE 8 8 8\nTYPE F F F\nCOUNT 1 1 1\n" +
					"POINTS 1\nDATA binary\n"),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"PLYBigEndian": {
				data: []byte("ply\nformat binary_big_endian 1.0\nelement vertex 1\n" +
					"property float x\nproperty float y\nproperty float z\nend_header\n"),
				dialect: DialectPLY,
				kind:    CorruptHeader,
			},
			"PLYListOnVertex": {
				data: []byte("ply\nformat binary_little_endian 1.0\nelement vertex 1\n" +
					"property float x\nproperty float y\nproperty float z\n" +
					"property list uchar int idx\nend_header\n"),
				dialect: DialectPLY,
				kind:    CorruptHeader,
			},
			"PointsOverflow": {
				data:    binaryPCD(math.MaxInt/8, recs...),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"WidthHeightOverflow": {
				data: append([]byte(fmt.Sprintf("FIELDS x y z\nSIZE 4 4 4\nTYPE F F F\n"+
					"WIDTH %d\nHEIGHT 3\nDATA binary\n", math.MaxInt/2)), float.Records(recs...)...),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"CountBeyondBody": {
				data:    binaryPCD(1000000000, recs...),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"PLYVertexOverflow": {
				data: append([]byte(fmt.Sprintf("ply\nformat binary_little_endian 1.0\nelement vertex %d\n"+
					"property float x\nproperty float y\nproperty float z\nend_header\n", math.MaxInt/8)),
					float.Records(recs...)...),
				dialect: DialectPLY,
				kind:    CorruptHeader,
			},
			"PCDSentinelPrefix": {
				data: append([]byte("FIELDS x y z\nSIZE 4 4 4\nTYPE F F F\nPOINTS 10\nDATASET binary\n"),
					float.Records(recs...)...),
				dialect: DialectPCD,
				kind:    CorruptHeader,
			},
			"PLYNoVertex": {
				data:    []byte("ply\nformat binary_little_endian 1.0\nend_header\n"),
				dialect: DialectPLY,
				kind:    CorruptHeader,
			},
		}
		for name, tt := range testCases {
			tt := tt
			t.Run(name, func(t *testing.T) {
				res, err := DecodeBinary(tt.data, tt.dialect, opts)
				if err == nil {
					t.Fatalf("Expected error, got %d vertices", len(res.Vertices))
				}
				if k := KindOf(err); k != tt.kind {
					t.Errorf("Expected %s, got: %s (%v)", tt.kind, k, err)
				}
			})
		}
	})
}

func TestParseHeader(t *testing.T) {
	testCases := map[string]struct {
		data    string
		dialect Dialect
		points  int
		stride  int
		offset  [3]int
		format  Format
	}{
		"PCD": {
			data:    pcdHeader(5, "binary"),
			dialect: DialectPCD,
			points:  5,
			stride:  12,
			offset:  [3]int{0, 4, 8},
			format:  Binary,
		},
		"PCDWidthHeight": {
			data: "FIELDS rgb x y z\nSIZE 4 4 4 4\nTYPE U F F F\nCOUNT 1 1 1 1\n" +
				"WIDTH 4\nHEIGHT 3\nDATA binary\n",
			dialect: DialectPCD,
			points:  12,
			stride:  16,
			offset:  [3]int{4, 8, 12},
			format:  Binary,
		},
		"PCDNoCount": {
			data:    "FIELDS x y z\nSIZE 4 4 4\nTYPE F F F\nPOINTS 2\nDATA binary_compressed\n",
			dialect: DialectPCD,
			points:  2,
			stride:  12,
			offset:  [3]int{0, 4, 8},
			format:  BinaryCompressed,
		},
		"PLYCRLF": {
			data: "ply\r\nformat binary_little_endian 1.0\r\nelement vertex 7\r\n" +
				"property uchar red\r\nproperty float x\r\nproperty float y\r\nproperty float z\r\nend_header\r\n",
			dialect: DialectPLY,
			points:  7,
			stride:  13,
			offset:  [3]int{1, 5, 9},
			format:  Binary,
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			h, err := ParseHeader([]byte(tt.data+"body"), tt.dialect)
			if err != nil {
				t.Fatal(err)
			}
			if h.Points != tt.points {
				t.Errorf("Expected %d points, got: %d", tt.points, h.Points)
			}
			if h.Stride() != tt.stride {
				t.Errorf("Expected stride %d, got: %d", tt.stride, h.Stride())
			}
			if h.layout.offset != tt.offset {
				t.Errorf("Expected offsets %v, got: %v", tt.offset, h.layout.offset)
			}
			if h.Format != tt.format {
				t.Errorf("Expected format %s, got: %s", tt.format, h.Format)
			}
			if h.Offset != len(tt.data) {
				t.Errorf("Expected body offset %d, got: %d", len(tt.data), h.Offset)
			}
		})
	}
}

// lzfLiteral encodes b as LZF literal runs of at most 32 bytes.
func lzfLiteral(b []byte) []byte {
	var out []byte
	for len(b) > 0 {
		n := len(b)
		if n > 32 {
			n = 32
		}
		out = append(out, byte(n-1))
		out = append(out, b[:n]...)
		b = b[n:]
	}
	return out
}
