package pcd

import (
	"go.uber.org/zap"
)

// DecodeOptions configures the binary decoders.
type DecodeOptions struct {
	// ChunkRecords is the number of records per window of the chunked decoder.
	ChunkRecords int
	// ChunkThreshold is the payload size in bytes from which Load decodes in
	// windows.
	ChunkThreshold int
	// MinValidPoints is the minimum number of kept vertices.
	MinValidPoints int
	// Yielder is called between windows. Nil yields to the Go scheduler.
	Yielder Yielder
	Logger  *zap.Logger
	// Progress, if set, is called after each window with the number of
	// records read so far.
	Progress func(done, total int)
}

func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		ChunkRecords:   1000,
		ChunkThreshold: 1 << 20,
		MinValidPoints: 10,
	}
}

func (o DecodeOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o DecodeOptions) yielder() Yielder {
	if o.Yielder == nil {
		return goschedYielder{}
	}
	return o.Yielder
}

// BinaryResult is the output of a binary decode.
type BinaryResult struct {
	Header   *Header
	Vertices Vertices
	// Dropped is the number of records with a non-finite coordinate.
	Dropped int
}

// DecodeBinary decodes a binary point file in one pass.
func DecodeBinary(data []byte, d Dialect, opts DecodeOptions) (*BinaryResult, error) {
	h, body, err := binaryBody(data, d)
	if err != nil {
		return nil, err
	}
	if need := h.Points * h.Stride(); len(body) < need {
		return nil, newDecodeError(CorruptHeader,
			"header declares %d points (%d bytes) but body has %d bytes", h.Points, need, len(body))
	}

	log := opts.logger()
	vs, dropped := decodeRecords(body, h.layout, 0, h.Points, make(Vertices, 0, h.maxRecords(body)), log)
	return finalizeBinary(h, vs, dropped, opts)
}

func binaryBody(data []byte, d Dialect) (*Header, []byte, error) {
	h, err := ParseHeader(data, d)
	if err != nil {
		return nil, nil, err
	}
	if h.Format == Ascii {
		return nil, nil, newDecodeError(CorruptHeader, "ascii body in a binary %s file", d)
	}
	body, err := h.Body(data)
	if err != nil {
		return nil, nil, wrapDecodeError(CorruptHeader, err, "reading body")
	}
	return h, body, nil
}

// decodeRecords appends the finite records in [first, last) to vs.
func decodeRecords(body []byte, layout recordLayout, first, last int, vs Vertices, log *zap.Logger) (Vertices, int) {
	var dropped int
	n := first
	for it := newRecordIterator(body, layout, first, last); it.IsValid(); it.Incr() {
		v := it.Vertex()
		if !v.IsFinite() {
			dropped++
			log.Debug("dropped non-finite record",
				zap.Int("record", n),
				zap.Float64s("xyz", []float64{v.X, v.Y, v.Z}),
			)
		} else {
			vs = append(vs, v)
		}
		n++
	}
	return vs, dropped
}

func finalizeBinary(h *Header, vs Vertices, dropped int, opts DecodeOptions) (*BinaryResult, error) {
	if dropped > 0 {
		opts.logger().Warn("dropped non-finite records",
			zap.Int("dropped", dropped),
			zap.Int("points", h.Points),
		)
	}
	if len(vs) < opts.MinValidPoints {
		return nil, newDecodeError(InsufficientValidPoints,
			"%d valid points, %d required", len(vs), opts.MinValidPoints)
	}
	return &BinaryResult{Header: h, Vertices: vs, Dropped: dropped}, nil
}
