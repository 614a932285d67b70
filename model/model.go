// Package model loads the lesion classifier and keeps the single instance
// alive for the lifetime of the process.
package model

import (
	"context"

	"github.com/krau/lesionscan/preprocess"
)

// Model maps one preprocessed image to a probability vector. Implementations
// are read-only after loading and safe for concurrent use.
type Model interface {
	Forward(t *preprocess.Tensor) ([]float32, error)
	OutputWidth() int
	Close() error
}

type Loader interface {
	Load(ctx context.Context) (Model, error)
}

type LoaderFunc func(ctx context.Context) (Model, error)

func (f LoaderFunc) Load(ctx context.Context) (Model, error) {
	return f(ctx)
}
