package pcd

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	lzf "github.com/zhuyie/golzf"
)

// Format is the body encoding declared in a header.
type Format int

const (
	Ascii Format = iota
	Binary
	BinaryCompressed
)

func (f Format) String() string {
	switch f {
	case Ascii:
		return "ascii"
	case Binary:
		return "binary"
	case BinaryCompressed:
		return "binary_compressed"
	default:
		return "unknown"
	}
}

const (
	pcdTerminator = "DATA"
	plyTerminator = "end_header"
)

var (
	errNoTerminator = errors.New("header terminator not found")
	errNoCount      = errors.New("vertex count declaration not found")
	errNoXYZ        = errors.New("x, y and z must be 4 byte float fields")
)

// recordLayout locates x, y and z inside a fixed-stride record.
type recordLayout struct {
	stride int
	offset [3]int
}

var xyzLayout = recordLayout{stride: 12, offset: [3]int{0, 4, 8}}

// Header is the parsed preamble of a binary point file.
type Header struct {
	Dialect Dialect
	Format  Format
	// Points is the declared vertex count.
	Points int
	// Offset is the byte offset of the body, just after the terminator.
	Offset int

	Fields []string
	Size   []int
	Count  []int

	layout recordLayout
}

// Stride returns the record size in bytes.
func (h *Header) Stride() int {
	return h.layout.stride
}

// ParseHeader reads the header of data one byte at a time until the terminator
// line of the dialect and parses it.
func ParseHeader(data []byte, d Dialect) (*Header, error) {
	text, off, err := scanHeader(data, d)
	if err != nil {
		return nil, &DecodeError{Kind: CorruptHeader, Chunk: -1, Err: err}
	}
	var h *Header
	switch d {
	case DialectPLY:
		h, err = parsePLYHeader(text)
	case DialectPCD:
		h, err = parsePCDHeader(text)
	default:
		err = errors.Errorf("%s files have no binary header", d)
	}
	if err != nil {
		return nil, &DecodeError{Kind: CorruptHeader, Chunk: -1, Err: err}
	}
	h.Dialect = d
	h.Offset = off
	return h, nil
}

func scanHeader(data []byte, d Dialect) ([]string, int, error) {
	var (
		lines []string
		line  strings.Builder
	)
	for i, c := range data {
		if c != '\n' {
			line.WriteByte(c)
			continue
		}
		l := strings.TrimRight(line.String(), "\r")
		line.Reset()
		lines = append(lines, l)
		switch d {
		case DialectPCD:
			if f := strings.Fields(l); len(f) > 0 && f[0] == pcdTerminator {
				return lines, i + 1, nil
			}
		case DialectPLY:
			if strings.TrimSpace(l) == plyTerminator {
				return lines, i + 1, nil
			}
		}
	}
	return nil, 0, errNoTerminator
}

func parsePCDDataFormat(s string) (Format, error) {
	switch s {
	case "ascii":
		return Ascii, nil
	case "binary":
		return Binary, nil
	case "binary_compressed":
		return BinaryCompressed, nil
	default:
		return 0, errors.Errorf("unknown data format %q", s)
	}
}

func parsePLYDataFormat(s string) (Format, error) {
	switch s {
	case "ascii":
		return Ascii, nil
	case "binary_little_endian":
		return Binary, nil
	case "binary_big_endian":
		return 0, errors.New("big endian body is not supported")
	default:
		return 0, errors.Errorf("unknown data format %q", s)
	}
}

func parsePCDHeader(lines []string) (*Header, error) {
	h := &Header{}
	var typ []string
	width, height, points := -1, -1, -1

	atoi := func(args []string) ([]int, error) {
		ret := make([]int, len(args))
		for i, s := range args {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %q", s)
			}
			ret[i] = v
		}
		return ret, nil
	}

	var err error
L_HEADER:
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if len(args) < 2 {
			return nil, errors.Errorf("header field %s must have value", args[0])
		}
		switch args[0] {
		case "VERSION":
		case "FIELDS":
			h.Fields = args[1:]
		case "SIZE":
			if h.Size, err = atoi(args[1:]); err != nil {
				return nil, err
			}
		case "TYPE":
			typ = args[1:]
		case "COUNT":
			if h.Count, err = atoi(args[1:]); err != nil {
				return nil, err
			}
		case "WIDTH":
			if width, err = strconv.Atoi(args[1]); err != nil {
				return nil, errors.Wrap(err, "parsing WIDTH")
			}
		case "HEIGHT":
			if height, err = strconv.Atoi(args[1]); err != nil {
				return nil, errors.Wrap(err, "parsing HEIGHT")
			}
		case "VIEWPOINT":
		case "POINTS":
			if points, err = strconv.Atoi(args[1]); err != nil {
				return nil, errors.Wrap(err, "parsing POINTS")
			}
			if points < 0 {
				return nil, errors.Errorf("negative vertex count %d", points)
			}
		case "DATA":
			if h.Format, err = parsePCDDataFormat(args[1]); err != nil {
				return nil, err
			}
			break L_HEADER
		}
	}

	switch {
	case points >= 0:
		h.Points = points
	case width >= 0 && height >= 0:
		if height > 0 && width > math.MaxInt/height {
			return nil, errors.Errorf("WIDTH %d x HEIGHT %d overflows", width, height)
		}
		h.Points = width * height
	default:
		return nil, errNoCount
	}

	// validate
	if h.Count == nil {
		h.Count = make([]int, len(h.Fields))
		for i := range h.Count {
			h.Count[i] = 1
		}
	}
	if len(h.Fields) != len(h.Size) {
		return nil, errors.New("size field size is wrong")
	}
	if len(h.Fields) != len(typ) {
		return nil, errors.New("type field size is wrong")
	}
	if len(h.Fields) != len(h.Count) {
		return nil, errors.New("count field size is wrong")
	}

	var found [3]bool
	off := 0
	for i, name := range h.Fields {
		if a := axis(name); a >= 0 {
			if typ[i] != "F" || h.Size[i] != 4 || h.Count[i] != 1 {
				return nil, errNoXYZ
			}
			h.layout.offset[a] = off
			found[a] = true
		}
		if h.Size[i] <= 0 || h.Count[i] <= 0 {
			return nil, errors.Errorf("field %s has no width", name)
		}
		off += h.Size[i] * h.Count[i]
	}
	if !found[0] || !found[1] || !found[2] {
		return nil, errNoXYZ
	}
	h.layout.stride = off
	if err := h.checkSize(); err != nil {
		return nil, err
	}
	return h, nil
}

// checkSize rejects vertex counts whose body size is not representable.
func (h *Header) checkSize() error {
	if h.Points > math.MaxInt/h.layout.stride {
		return errors.Errorf("%d points of %d bytes overflow the body size", h.Points, h.layout.stride)
	}
	return nil
}

// maxRecords returns the number of records the body can hold, capped by the
// declared count.
func (h *Header) maxRecords(body []byte) int {
	n := len(body) / h.layout.stride
	if h.Points < n {
		return h.Points
	}
	return n
}

func axis(name string) int {
	switch name {
	case "x":
		return 0
	case "y":
		return 1
	case "z":
		return 2
	default:
		return -1
	}
}

var plyTypeSize = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

func parsePLYHeader(lines []string) (*Header, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "ply" {
		return nil, errors.New("missing ply magic")
	}
	h := &Header{}
	var (
		element   string
		nElements int
		hasVertex bool
		hasFormat bool
		found     [3]bool
		off       int
		err       error
	)
	for _, line := range lines[1:] {
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "comment", "obj_info", plyTerminator:
		case "format":
			if len(args) < 2 {
				return nil, errors.New("format must have value")
			}
			if h.Format, err = parsePLYDataFormat(args[1]); err != nil {
				return nil, err
			}
			hasFormat = true
		case "element":
			if len(args) < 3 {
				return nil, errors.New("element must have name and count")
			}
			element = args[1]
			nElements++
			if element != "vertex" {
				continue
			}
			if nElements != 1 {
				return nil, errors.New("vertex must be the first element")
			}
			if h.Points, err = strconv.Atoi(args[2]); err != nil {
				return nil, errors.Wrap(err, "parsing vertex count")
			}
			if h.Points < 0 {
				return nil, errors.Errorf("negative vertex count %d", h.Points)
			}
			hasVertex = true
		case "property":
			if element != "vertex" {
				continue
			}
			if len(args) < 3 {
				return nil, errors.New("property must have type and name")
			}
			if args[1] == "list" {
				return nil, errors.New("list property on vertex element")
			}
			size, ok := plyTypeSize[args[1]]
			if !ok {
				return nil, errors.Errorf("unknown property type %q", args[1])
			}
			name := args[2]
			if a := axis(name); a >= 0 {
				// Ascii bodies are parsed as text whatever the declared width.
				if h.Format != Ascii && (size != 4 || (args[1] != "float" && args[1] != "float32")) {
					return nil, errNoXYZ
				}
				h.layout.offset[a] = off
				found[a] = true
			}
			h.Fields = append(h.Fields, name)
			h.Size = append(h.Size, size)
			h.Count = append(h.Count, 1)
			off += size
		default:
			return nil, errors.Errorf("unknown header keyword %q", args[0])
		}
	}
	if !hasFormat {
		return nil, errors.New("format declaration not found")
	}
	if !hasVertex {
		return nil, errNoCount
	}
	if !found[0] || !found[1] || !found[2] {
		return nil, errNoXYZ
	}
	h.layout.stride = off
	if err := h.checkSize(); err != nil {
		return nil, err
	}
	return h, nil
}

// Body returns the record bytes following the header in row-major layout.
// A binary_compressed body is inflated and transposed from its per-field
// layout.
func (h *Header) Body(data []byte) ([]byte, error) {
	body := data[h.Offset:]
	switch h.Format {
	case Binary:
		return body, nil
	case BinaryCompressed:
		return h.inflate(body)
	default:
		return nil, errors.Errorf("%s body is not binary", h.Format)
	}
}

func (h *Header) inflate(b []byte) ([]byte, error) {
	if len(b) < 8 {
		return nil, errors.New("compressed size fields are missing")
	}
	nCompressed := int(binary.LittleEndian.Uint32(b[0:4]))
	nUncompressed := int(binary.LittleEndian.Uint32(b[4:8]))
	b = b[8:]
	if nCompressed > len(b) {
		return nil, errors.Errorf("compressed size %d exceeds body size %d", nCompressed, len(b))
	}
	stride := h.Stride()
	if nUncompressed != stride*h.Points {
		return nil, errors.Errorf("uncompressed size %d does not match %d points", nUncompressed, h.Points)
	}

	dec := make([]byte, nUncompressed)
	n, err := lzf.Decompress(b[:nCompressed], dec)
	if err != nil {
		return nil, errors.Wrap(err, "inflating body")
	}
	if n != nUncompressed {
		return nil, errors.New("wrong uncompressed size")
	}

	head := make([]int, len(h.Fields))
	offset := make([]int, len(h.Fields))
	var pos, off int
	for i := range h.Fields {
		head[i] = pos
		offset[i] = off
		pos += h.Size[i] * h.Count[i] * h.Points
		off += h.Size[i] * h.Count[i]
	}

	data := make([]byte, n)
	for p := 0; p < h.Points; p++ {
		for i := range head {
			size := h.Size[i] * h.Count[i]
			to := p*stride + offset[i]
			from := head[i] + p*size
			copy(data[to:to+size], dec[from:from+size])
		}
	}
	return data, nil
}
