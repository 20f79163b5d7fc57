package hdlobjects

import "errors"

// ErrInvalidArgument is returned when an operation is given a nil node or a
// node that is already owned by another parent.
var ErrInvalidArgument = errors.New("invalid argument")
