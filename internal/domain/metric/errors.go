package metric

import "errors"

// Sentinel kinds for derivation errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
)
