package group

import "errors"

var (
	// ErrNotFound is returned when a group id does not resolve.
	ErrNotFound = errors.New("Group not found")

	// ErrSystemGroup is returned on any attempt to mutate or delete a
	// protected built-in group.
	ErrSystemGroup = errors.New("Cannot modify admin group")

	// ErrDuplicateName is returned when a group name is already taken.
	ErrDuplicateName = errors.New("Group name already exists")
)

// ValidationError carries a human-readable payload validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
