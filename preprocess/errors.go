package preprocess

import "fmt"

// UnsupportedImageError is returned for uploads that cannot be turned into
// a model input: undecodable bytes, a disallowed format or an image with no
// pixels. It is scoped to a single request.
type UnsupportedImageError struct {
	Reason string
	Err    error
}

func (e *UnsupportedImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported image: %s: %v", e.Reason, e.Err)
	}
	return "unsupported image: " + e.Reason
}

func (e *UnsupportedImageError) Unwrap() error {
	return e.Err
}
