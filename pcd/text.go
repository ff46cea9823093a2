package pcd

import (
	"strconv"
	"strings"
)

// TextResult is the output of the text parser.
type TextResult struct {
	Vertices Vertices
	// Skipped is the number of non-blank rows that did not hold three finite
	// numbers.
	Skipped int
}

// ParseText decodes newline separated "x y z" rows.
// For the pcd and ply dialects only rows after the sentinel header line are
// read. Rejected rows are counted, never returned as errors.
func ParseText(content string, d Dialect) (*TextResult, error) {
	lines := strings.Split(content, "\n")
	start := 0
	if sentinel, ok := textSentinel(d); ok {
		start = -1
		for i, l := range lines {
			if f := strings.Fields(l); len(f) > 0 && f[0] == sentinel {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, newDecodeError(CorruptHeader, "%s header sentinel %q not found", d, sentinel)
		}
	}

	// Rows after the vertex element of a ply file describe faces.
	limit := -1
	if d == DialectPLY {
		h, err := parsePLYHeader(lines[:start])
		if err != nil {
			return nil, wrapDecodeError(CorruptHeader, err, "parsing ply header")
		}
		limit = h.Points
	}

	ret := &TextResult{Vertices: make(Vertices, 0, len(lines)-start)}
	for _, l := range lines[start:] {
		args := strings.Fields(l)
		if len(args) == 0 {
			continue
		}
		if limit == 0 {
			break
		}
		limit--
		v, ok := parseRow(args)
		if !ok {
			ret.Skipped++
			continue
		}
		ret.Vertices = append(ret.Vertices, v)
	}
	return ret, nil
}

func textSentinel(d Dialect) (string, bool) {
	switch d {
	case DialectPCD:
		return pcdTerminator, true
	case DialectPLY:
		return plyTerminator, true
	default:
		return "", false
	}
}

func parseRow(args []string) (Vertex, bool) {
	if len(args) < 3 {
		return Vertex{}, false
	}
	var xyz [3]float64
	for i := range xyz {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil || !isFinite(f) {
			return Vertex{}, false
		}
		xyz[i] = f
	}
	return Vertex{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true
}
