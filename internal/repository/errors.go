package repository

import "errors"

// ErrNotFound is returned when an id does not resolve to a live record.
var ErrNotFound = errors.New("not found")
