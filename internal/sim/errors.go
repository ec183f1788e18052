package sim

import "errors"

var (
	// ErrInvalidState indicates a body whose position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrEmptyScene indicates a run over a scene with no bodies.
	ErrEmptyScene = errors.New("sim: scene has no bodies")

	// ErrNoFactory indicates an ensemble job with nothing to build its scene.
	ErrNoFactory = errors.New("sim: job has no scene factory")
)
