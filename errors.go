package morph

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap one of these so callers can test
// with errors.Is.
var (
	// ErrHiddenElement is reported when an element that would be animated is
	// hidden at build time.
	ErrHiddenElement = errors.New("morph: animated element is hidden")
	// ErrUnresolvedKey is reported when a view source names an element that
	// does not exist.
	ErrUnresolvedKey = errors.New("morph: unresolved element key")
	// ErrMissingBase is reported when a base element or the stage is nil.
	ErrMissingBase = errors.New("morph: missing base element or stage")
	// ErrGuidanceRange is reported for a timing multiplier outside [0.5, 1.5].
	ErrGuidanceRange = errors.New("morph: guidance value out of range")
	// ErrDetached is reported when an element is not reachable from the
	// stage, so its geometry cannot be expressed in stage space.
	ErrDetached = errors.New("morph: element not attached to stage")
	// ErrSnapshot is reported when a replica cannot be produced.
	ErrSnapshot = errors.New("morph: snapshot failed")
	// ErrInvalidState is returned when an Animator operation is called out of
	// order, e.g. Run twice.
	ErrInvalidState = errors.New("morph: invalid animator state")
)

// SceneBuildError describes why a Scene could not be built.
type SceneBuildError struct {
	Side Side   // side the offending element belongs to
	Key  string // element key, empty for base/stage problems
	Err  error
}

func (e *SceneBuildError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("build scene (%s): %v", e.Side, e.Err)
	}
	return fmt.Sprintf("build scene (%s %q): %v", e.Side, e.Key, e.Err)
}

func (e *SceneBuildError) Unwrap() error { return e.Err }

// GeometryError reports an element whose position cannot be converted into
// stage space.
type GeometryError struct {
	Element string
	Err     error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry of %q: %v", e.Element, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// CompositionError reports a failure while building the transient node graph.
type CompositionError struct {
	Node string // name of the node being composed
	Err  error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("compose %s: %v", e.Node, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }
