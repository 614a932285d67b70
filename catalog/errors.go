package catalog

import "fmt"

// LabelMappingError means the model output cannot be mapped onto the
// catalog, usually because the model artifact is stale. It is a deployment
// defect, not a user error.
type LabelMappingError struct {
	Expected int
	Got      int
	// Index is the out-of-range index, or -1 for a width mismatch.
	Index int
}

func (e *LabelMappingError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("label mapping: index %d outside catalog of %d classes", e.Index, e.Expected)
	}
	return fmt.Sprintf("label mapping: model output width %d does not match catalog of %d classes", e.Got, e.Expected)
}
