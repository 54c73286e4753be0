package catalog

import "errors"

// ErrNotFound is returned by catalog stores when a row does not exist (or is
// not owned by the requesting creator).
var ErrNotFound = errors.New("not found")

// ErrConflict is returned by catalog stores when a unique column is taken.
var ErrConflict = errors.New("conflict")
