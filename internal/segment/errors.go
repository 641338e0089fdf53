package segment

import "errors"

// Store failure classes. Callers classify wrapped errors with errors.Is;
// the wrapped message is suitable for verbatim display to the user.
var (
	// ErrNameConflict is returned when adding or renaming to a name that
	// already exists in the store.
	ErrNameConflict = errors.New("segment name already exists")

	// ErrNotFound is returned when the named segment is not in the store.
	ErrNotFound = errors.New("segment not found")

	// ErrInvalidRange is returned when a segment's name or frame bounds
	// fail validation.
	ErrInvalidRange = errors.New("invalid segment range")

	// ErrOverlap is returned when a new segment's frame range intersects
	// an existing segment.
	ErrOverlap = errors.New("segment ranges overlap")

	// ErrOutOfRange is returned when a frame-hold offset falls outside the
	// segment's own frame range.
	ErrOutOfRange = errors.New("frame offset out of range")

	// ErrNoContext is returned when saving without a sprite sheet loaded.
	ErrNoContext = errors.New("no sprite sheet loaded")
)
