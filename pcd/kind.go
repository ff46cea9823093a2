package pcd

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Kind is the class of an uploaded file.
type Kind int

const (
	Unsupported Kind = iota
	AsciiPoint
	BinaryStructuredPoint
	VectorGeometry
)

func (k Kind) String() string {
	switch k {
	case AsciiPoint:
		return "ascii-point-text"
	case BinaryStructuredPoint:
		return "binary-point"
	case VectorGeometry:
		return "vector-geometry"
	default:
		return "unsupported"
	}
}

// Dialect is the header syntax of a point file.
type Dialect int

const (
	DialectXYZ Dialect = iota
	DialectPCD
	DialectPLY
)

func (d Dialect) String() string {
	switch d {
	case DialectPCD:
		return "pcd"
	case DialectPLY:
		return "ply"
	default:
		return "xyz"
	}
}

// DialectOf returns the header dialect for the file name.
func DialectOf(name string) Dialect {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pcd":
		return DialectPCD
	case ".ply":
		return DialectPLY
	default:
		return DialectXYZ
	}
}

// Detect classifies a file by its lowercased extension.
// For .pcd and .ply the data format declared in head (the leading bytes of the
// file, may be nil) selects between AsciiPoint and BinaryStructuredPoint.
func Detect(name string, head []byte) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xyz":
		return AsciiPoint
	case ".pcd":
		if f, ok := sniffFormat(DialectPCD, head); ok && f == Ascii {
			return AsciiPoint
		}
		return BinaryStructuredPoint
	case ".ply":
		if f, ok := sniffFormat(DialectPLY, head); ok && f == Ascii {
			return AsciiPoint
		}
		return BinaryStructuredPoint
	case ".json", ".geojson":
		return VectorGeometry
	default:
		return Unsupported
	}
}

// sniffFormat looks for the data format declaration in the header part of head.
func sniffFormat(d Dialect, head []byte) (Format, bool) {
	for len(head) > 0 {
		var line []byte
		if i := bytes.IndexByte(head, '\n'); i >= 0 {
			line, head = head[:i], head[i+1:]
		} else {
			line, head = head, nil
		}
		args := strings.Fields(string(line))
		if len(args) < 2 {
			if len(args) == 1 && args[0] == plyTerminator {
				return 0, false
			}
			continue
		}
		switch {
		case d == DialectPCD && args[0] == "DATA":
			f, err := parsePCDDataFormat(args[1])
			return f, err == nil
		case d == DialectPLY && args[0] == "format":
			f, err := parsePLYDataFormat(args[1])
			return f, err == nil
		}
	}
	return 0, false
}
