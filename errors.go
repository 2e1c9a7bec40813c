package nodearea

import "errors"

var (
	// ErrNotInContent is returned by Content.Reorder when the target or the
	// reference element is not a child of the content holder.
	ErrNotInContent = errors.New("element is not a child of the content holder")

	// ErrDestroyed is returned by operations on a destroyed plugin or a
	// closed scheduler.
	ErrDestroyed = errors.New("area is destroyed")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)
