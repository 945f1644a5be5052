package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed marks a page that could not be retrieved: transport failure,
	// non-2xx status, or an empty body.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrMissingInput marks an identifier list that does not exist.
	ErrMissingInput = errors.New("identifier list not found")
	// ErrStructuralMismatch marks a page whose markup does not have the expected layout.
	ErrStructuralMismatch = errors.New("structural mismatch")
)

// StructuralMismatchError describes which region of a page deviated from the
// expected layout.
type StructuralMismatchError struct {
	Region string
	Detail string
}

// Mismatch builds a StructuralMismatchError for region.
func Mismatch(region string, format string, args ...any) error {
	return &StructuralMismatchError{Region: region, Detail: fmt.Sprintf(format, args...)}
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("structural mismatch in %s: %s", e.Region, e.Detail)
}

// Is lets errors.Is match ErrStructuralMismatch.
func (e *StructuralMismatchError) Is(target error) bool {
	return target == ErrStructuralMismatch
}
