package pcd

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Yielder hands control back to the host between windows.
type Yielder interface {
	Yield(ctx context.Context) error
}

// YieldFunc adapts a function to Yielder.
type YieldFunc func(ctx context.Context) error

func (f YieldFunc) Yield(ctx context.Context) error {
	return f(ctx)
}

type goschedYielder struct{}

func (goschedYielder) Yield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// DecodeChunked decodes a binary point file in windows of opts.ChunkRecords
// records, yielding between windows. Windows are processed in index order.
// The context is checked at every window boundary; a cancelled decode returns
// a Canceled error and no vertices.
func DecodeChunked(ctx context.Context, data []byte, d Dialect, opts DecodeOptions) (*BinaryResult, error) {
	h, body, err := binaryBody(data, d)
	if err != nil {
		return nil, err
	}
	n := opts.ChunkRecords
	if n <= 0 {
		n = DefaultDecodeOptions().ChunkRecords
	}
	if n > h.Points && h.Points > 0 {
		n = h.Points
	}
	log := opts.logger()
	yielder := opts.yielder()
	stride := h.Stride()
	nWindows := (h.Points + n - 1) / n

	acc := make(Vertices, 0, h.maxRecords(body))
	var dropped int
	for w := 0; w < nWindows; w++ {
		if err := ctx.Err(); err != nil {
			return nil, &DecodeError{Kind: Canceled, Chunk: w, Err: err}
		}
		first := w * n
		last := first + n
		if last > h.Points {
			last = h.Points
		}
		if last*stride > len(body) {
			log.Warn("window exceeds body",
				zap.Int("chunk", w),
				zap.Int("body", len(body)),
			)
			return nil, &DecodeError{
				Kind:  ChunkDecodeError,
				Chunk: w,
				Err: errors.Errorf("records %d-%d need %d bytes, body has %d",
					first, last-1, last*stride, len(body)),
			}
		}
		var nd int
		acc, nd = decodeRecords(body, h.layout, first, last, acc, log)
		dropped += nd
		if opts.Progress != nil {
			opts.Progress(last, h.Points)
		}
		if w == nWindows-1 {
			break
		}
		if err := yielder.Yield(ctx); err != nil {
			return nil, &DecodeError{Kind: Canceled, Chunk: w + 1, Err: err}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &DecodeError{Kind: Canceled, Chunk: nWindows, Err: err}
	}
	log.Debug("chunked decode done",
		zap.Int("chunks", nWindows),
		zap.Int("kept", len(acc)),
	)
	return finalizeBinary(h, acc, dropped, opts)
}
