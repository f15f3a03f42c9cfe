package filter

import "fmt"

// ValidationError reports a filter clause that cannot be compiled.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid filter clause %d (%q): %s", e.Index, e.Field, e.Reason)
}
