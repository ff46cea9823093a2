package pcd

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Loader runs one load at a time. Starting a load cancels the previous one,
// and only the result of the latest generation may be committed.
type Loader struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	opts   Options
}

func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts}
}

// SetOptions replaces the options used by subsequent loads.
func (l *Loader) SetOptions(opts Options) {
	l.mu.Lock()
	l.opts = opts
	l.mu.Unlock()
}

func (l *Loader) Options() Options {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opts
}

// Task is an in-flight load.
type Task struct {
	gen  uint64
	done chan struct{}
	out  *Output
	err  error
}

func (t *Task) Generation() uint64 {
	return t.gen
}

// Done is closed when the load finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the load finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (*Output, error) {
	select {
	case <-t.done:
		return t.out, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Load starts decoding data in a new goroutine.
func (l *Loader) Load(ctx context.Context, name string, data []byte) *Task {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	t := &Task{gen: l.gen, done: make(chan struct{})}
	opts := l.opts
	l.mu.Unlock()

	log := opts.Decode.logger()
	go func() {
		defer close(t.done)
		defer cancel()
		t.out, t.err = Load(ctx, name, data, opts)
		if KindOf(t.err) == Canceled {
			log.Debug("load superseded",
				zap.String("file", name),
				zap.Uint64("generation", t.gen),
			)
		}
	}()
	return t
}

// IsCurrent reports whether t is the latest load.
func (l *Loader) IsCurrent(t *Task) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return t.gen == l.gen
}

// Cancel stops the in-flight load, if any.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
