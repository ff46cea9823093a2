package pcd

import (
	"context"

	"go.uber.org/zap"

	"github.com/seqsense/pcdviewer/geo"
)

// Range is a closed interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// RenderConfig holds the rendering parameters passed into Load.
// AltitudeClamp is carried to the renderer and does not filter or recolor
// vertices.
type RenderConfig struct {
	PointSize       float64
	ColorByAltitude bool
	HueScale        float64
	AltitudeClamp   Range
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		PointSize:       0.05,
		ColorByAltitude: true,
		HueScale:        DefaultHueScale,
		AltitudeClamp:   Range{Min: -5, Max: 5},
	}
}

// Options configures Load.
type Options struct {
	Decode DecodeOptions
	Render RenderConfig
}

func DefaultOptions() Options {
	return Options{
		Decode: DefaultDecodeOptions(),
		Render: DefaultRenderConfig(),
	}
}

// Output is handed to the renderer after a successful load.
type Output struct {
	PointCloud
	Metadata Metadata
	// Colors is index aligned with Vertices, or nil if coloring is off.
	Colors []Color
	Render RenderConfig
	// Skipped counts rejected text rows.
	Skipped int
	// Dropped counts non-finite binary records.
	Dropped int
	// Vector is set for vector geometry files only.
	Vector *geo.Vector
}

// Load detects the kind of the named file and decodes data.
// It returns either a complete Output or a *DecodeError.
func Load(ctx context.Context, name string, data []byte, opts Options) (*Output, error) {
	log := opts.Decode.logger().With(zap.String("file", name))
	kind := Detect(name, data)
	if kind == Unsupported {
		return nil, newDecodeError(UnsupportedFileType, "%q", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, &DecodeError{Kind: Canceled, Chunk: -1, Err: err}
	}

	out := &Output{
		PointCloud: PointCloud{
			Name: name,
			Size: int64(len(data)),
			Kind: kind,
		},
		Render: opts.Render,
	}
	d := DialectOf(name)

	switch kind {
	case VectorGeometry:
		v, err := geo.Parse(data)
		if err != nil {
			return nil, wrapDecodeError(VectorParseError, err, name)
		}
		out.Vector = v
		log.Debug("loaded vector geometry", zap.Int("features", v.Len()))
		return out, nil
	case AsciiPoint:
		res, err := ParseText(string(data), d)
		if err != nil {
			return nil, err
		}
		if res.Skipped > 0 {
			log.Debug("skipped malformed rows",
				zap.Stringer("kind", MalformedRow),
				zap.Int("skipped", res.Skipped),
			)
		}
		out.Vertices, out.Skipped = res.Vertices, res.Skipped
	case BinaryStructuredPoint:
		dopts := opts.Decode
		dopts.Logger = log
		var (
			res *BinaryResult
			err error
		)
		if len(data) >= opts.Decode.ChunkThreshold {
			res, err = DecodeChunked(ctx, data, d, dopts)
		} else {
			res, err = DecodeBinary(data, d, dopts)
		}
		if err != nil {
			return nil, err
		}
		out.Vertices, out.Dropped = res.Vertices, res.Dropped
	}

	out.Metadata = ComputeMetadata(out.Vertices)
	out.Colors = colorsFor(out.Vertices, opts.Render)
	log.Info("loaded point cloud",
		zap.Stringer("kind", kind),
		zap.Int("points", out.Metadata.PointCount),
	)
	return out, nil
}

func colorsFor(vs Vertices, cfg RenderConfig) []Color {
	if !cfg.ColorByAltitude {
		return nil
	}
	return MapColors(vs, Altitude, cfg.HueScale)
}

// WithRender returns a copy of o recolored for cfg. o is not modified.
func (o *Output) WithRender(cfg RenderConfig) *Output {
	ret := *o
	ret.Render = cfg
	ret.Colors = colorsFor(o.Vertices, cfg)
	return &ret
}

// Positions returns the vertices as a flat xyz buffer.
func (o *Output) Positions() []float32 {
	ret := make([]float32, 0, 3*len(o.Vertices))
	for _, v := range o.Vertices {
		ret = append(ret, float32(v.X), float32(v.Y), float32(v.Z))
	}
	return ret
}

// ColorBuffer returns the colors as a flat rgb buffer, or nil if the output
// has no colors.
func (o *Output) ColorBuffer() []float32 {
	if o.Colors == nil {
		return nil
	}
	ret := make([]float32, 0, 3*len(o.Colors))
	for _, c := range o.Colors {
		ret = append(ret, float32(c.R), float32(c.G), float32(c.B))
	}
	return ret
}
