package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnregisteredLayer = errors.New("unregistered custom layer")
	ErrLoadTimeout       = errors.New("model load timed out")
	ErrInputShape        = errors.New("unexpected model input shape")
	ErrNoOutput          = errors.New("model has no usable output")
)

// ModelLoadError means the artifact could not be turned into a model. The
// registry caches it: the process has to be restarted to retry.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load model: %v", e.Err)
	}
	return fmt.Sprintf("failed to load model '%s': %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
