package pcd

import (
	"testing"
)

func TestDetect(t *testing.T) {
	testCases := map[string]struct {
		name     string
		head     string
		expected Kind
	}{
		"XYZ":             {name: "scan.xyz", expected: AsciiPoint},
		"XYZUpper":        {name: "SCAN.XYZ", expected: AsciiPoint},
		"PCDAscii":        {name: "a.pcd", head: "VERSION 0.7\nPOINTS 1\nDATA ascii\n1 2 3\n", expected: AsciiPoint},
		"PCDBinary":       {name: "a.pcd", head: "VERSION 0.7\nPOINTS 1\nDATA binary\n\x00\x00", expected: BinaryStructuredPoint},
		"PCDCompressed":   {name: "a.PCD", head: "DATA binary_compressed\n", expected: BinaryStructuredPoint},
		"PCDNoHead":       {name: "a.pcd", expected: BinaryStructuredPoint},
		"PLYAscii":        {name: "m.ply", head: "ply\nformat ascii 1.0\nend_header\n", expected: AsciiPoint},
		"PLYBinary":       {name: "m.ply", head: "ply\nformat binary_little_endian 1.0\nend_header\n", expected: BinaryStructuredPoint},
		"PLYNoHead":       {name: "m.ply", expected: BinaryStructuredPoint},
		"JSON":            {name: "roads.json", expected: VectorGeometry},
		"GeoJSON":         {name: "roads.GeoJSON", expected: VectorGeometry},
		"Text":            {name: "sample.txt", expected: Unsupported},
		"NoExtension":     {name: "pcd", expected: Unsupported},
		"DirWithDotInExt": {name: "dir.pcd/file", expected: Unsupported},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			var head []byte
			if tt.head != "" {
				head = []byte(tt.head)
			}
			if k := Detect(tt.name, head); k != tt.expected {
				t.Errorf("Expected %s, got: %s", tt.expected, k)
			}
		})
	}
}
