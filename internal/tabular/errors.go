package tabular

import "fmt"

// LoadError reports that a source could not be loaded: the file is missing
// or unreadable, or required columns/fields are absent. A LoadError is fatal
// for its dataset; callers never receive a partial table with it.
type LoadError struct {
	Source string
	Err    error
}

// NewLoadError wraps err as a LoadError for source.
func NewLoadError(source string, err error) *LoadError {
	return &LoadError{Source: source, Err: err}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
