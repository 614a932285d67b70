package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type Status int

const (
	StatusNotLoaded Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "not loaded"
	}
}

// Registry holds the process-wide model. The first Get runs the loader;
// every later Get returns the same model, or the same error if loading
// failed.
type Registry struct {
	loader  Loader
	timeout time.Duration
	path    string

	once  sync.Once
	mu    sync.RWMutex
	model Model
	err   error
	loads atomic.Int32
}

// NewRegistry creates a registry around loader. path is only used in
// errors and logs. A timeout of zero disables the load deadline.
func NewRegistry(loader Loader, path string, timeout time.Duration) *Registry {
	return &Registry{loader: loader, path: path, timeout: timeout}
}

// Get returns the loaded model. On failure it returns a nil Model and a
// *ModelLoadError; the loader is never called a second time.
func (r *Registry) Get(ctx context.Context) (Model, error) {
	r.once.Do(func() { r.load(ctx) })
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model, r.err
}

// LoadCount reports how many times the loader has been invoked.
func (r *Registry) LoadCount() int {
	return int(r.loads.Load())
}

func (r *Registry) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch {
	case r.model != nil:
		return StatusReady
	case r.err != nil:
		return StatusFailed
	default:
		return StatusNotLoaded
	}
}

// Close releases the model. It must not race with in-flight inference.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.model == nil {
		return nil
	}
	err := r.model.Close()
	r.model = nil
	r.err = &ModelLoadError{Path: r.path, Err: errors.New("registry closed")}
	return err
}

type loadResult struct {
	model Model
	err   error
}

func (r *Registry) load(ctx context.Context) {
	r.loads.Add(1)
	start := time.Now()
	slog.Info("Loading model", slog.String("path", r.path))

	// a cancelled first request must not poison the registry
	ctx = context.WithoutCancel(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	done := make(chan loadResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- loadResult{err: fmt.Errorf("loader panicked: %v", p)}
			}
		}()
		m, err := r.loader.Load(ctx)
		done <- loadResult{model: m, err: err}
	}()

	var res loadResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ErrLoadTimeout
		go func() {
			if late := <-done; late.model != nil {
				_ = late.model.Close()
			}
		}()
	}
	if res.err == nil && res.model == nil {
		res.err = ErrNoOutput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if res.err != nil {
		var mle *ModelLoadError
		if !errors.As(res.err, &mle) {
			mle = &ModelLoadError{Path: r.path, Err: res.err}
		}
		r.err = mle
		slog.Error("Failed to load model",
			slog.String("path", r.path),
			slog.String("error", res.err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return
	}
	r.model = res.model
	slog.Info("Model loaded",
		slog.String("path", r.path),
		slog.Int("output_width", res.model.OutputWidth()),
		slog.Duration("elapsed", time.Since(start)))
}
