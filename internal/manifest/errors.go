package manifest

import "fmt"

// ValidationError is a fatal configuration error, reported with the kind and
// name of the offending manifest entry. Nothing is executed once one is
// raised.
type ValidationError struct {
	Kind string
	Name string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	errAmbiguousShape = fmt.Errorf("ambiguous shape: more than one of template reference, properties and profiles is present")
	errEmptyShape     = fmt.Errorf("empty shape: none of template reference, properties and profiles is present")
)

func errUnknownDependencyType(t DependencyType) error {
	return fmt.Errorf("unknown dependency type %q", t)
}
