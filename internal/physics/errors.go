package physics

import (
	"errors"
	"fmt"
)

// Precondition violations. The core panics with an error wrapping one of these.
var (
	// ErrInvalidMass indicates a mass that is not strictly positive.
	ErrInvalidMass = errors.New("physics: mass must be positive")

	// ErrTooFewVertices indicates a shape with fewer than three vertices.
	ErrTooFewVertices = errors.New("physics: shape needs at least 3 vertices")

	// ErrDegeneratePolygon indicates a shape whose area is negligible next to
	// its bounding box.
	ErrDegeneratePolygon = errors.New("physics: degenerate polygon (zero area)")

	// ErrIndexOutOfRange indicates a body or force index outside the scene.
	ErrIndexOutOfRange = errors.New("physics: index out of range")

	// ErrUnknownBody indicates a body handle that is not (or no longer) in the scene.
	ErrUnknownBody = errors.New("physics: unknown body")

	// ErrBodyOwned indicates a body that already belongs to a scene.
	ErrBodyOwned = errors.New("physics: body already belongs to a scene")
)

func fail(sentinel error, format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...))
}
