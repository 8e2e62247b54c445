package scheduler

import "errors"

// ErrInvalidInput is returned for out-of-range arguments that cannot be
// silently clamped to a sane default, before any store access happens.
var ErrInvalidInput = errors.New("invalid input")
