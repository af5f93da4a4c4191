package sentinel

import "errors"

// ErrInvalidState marks a stored record that does not match its expected
// layout. Stores and codecs return it wrapped so the registry service can
// report corruption as an internal error.
//
// Registry rule violations (duplicates, missing references) use
// pkg/domain-errors directly.
var ErrInvalidState = errors.New("invalid state")
