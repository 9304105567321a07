package physics

import "errors"

// Error sentinels for the physics package (spec 7 error-handling design:
// typed sentinel errors rather than string matching). No function in this
// package returns any of them; the physics entry points report no errors.
var (
	// ErrEntityNotFound names an entity passed to a physics query
	// (raycast filter, joint lookup) that has no RigidBody/Collider.
	ErrEntityNotFound = errors.New("physics: entity not found")

	// ErrInvalidBodyConfiguration names a dynamic body with non-positive
	// mass.
	ErrInvalidBodyConfiguration = errors.New("physics: invalid body configuration")

	// ErrDegenerateShape names a collider shape that cannot produce a
	// usable support function (e.g. an empty convex hull).
	ErrDegenerateShape = errors.New("physics: degenerate collider shape")
)
