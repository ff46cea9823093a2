package pcd

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a failed or degraded decode.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// UnsupportedFileType is returned before any byte is read.
	UnsupportedFileType
	// MalformedRow names a dropped text row. It is used for diagnostics only
	// and never returned.
	MalformedRow
	CorruptHeader
	InsufficientValidPoints
	ChunkDecodeError
	VectorParseError
	// Canceled is returned by a load superseded by a newer one.
	Canceled
)

var kindNames = map[ErrorKind]string{
	KindUnknown:             "unknown",
	UnsupportedFileType:     "unsupported file type",
	MalformedRow:            "malformed row",
	CorruptHeader:           "corrupt header",
	InsufficientValidPoints: "insufficient valid points",
	ChunkDecodeError:        "chunk decode error",
	VectorParseError:        "vector parse error",
	Canceled:                "canceled",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// DecodeError is the terminal outcome of a failed load.
// Chunk is the failing window index for ChunkDecodeError and -1 otherwise.
type DecodeError struct {
	Kind  ErrorKind
	Chunk int
	Err   error
}

// Sentinels for errors.Is.
var (
	ErrUnsupportedFileType     = &DecodeError{Kind: UnsupportedFileType, Chunk: -1}
	ErrCorruptHeader           = &DecodeError{Kind: CorruptHeader, Chunk: -1}
	ErrInsufficientValidPoints = &DecodeError{Kind: InsufficientValidPoints, Chunk: -1}
	ErrChunkDecode             = &DecodeError{Kind: ChunkDecodeError, Chunk: -1}
	ErrVectorParse             = &DecodeError{Kind: VectorParseError, Chunk: -1}
	ErrCanceled                = &DecodeError{Kind: Canceled, Chunk: -1}
)

func (e *DecodeError) Error() string {
	var msg string
	if e.Kind == ChunkDecodeError && e.Chunk >= 0 {
		msg = fmt.Sprintf("%s: chunk %d", e.Kind, e.Chunk)
	} else {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DecodeError of the same kind.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first DecodeError in err's chain.
func KindOf(err error) ErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

func newDecodeError(kind ErrorKind, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Chunk: -1, Err: errors.Errorf(format, args...)}
}

func wrapDecodeError(kind ErrorKind, err error, msg string) *DecodeError {
	return &DecodeError{Kind: kind, Chunk: -1, Err: errors.Wrap(err, msg)}
}
