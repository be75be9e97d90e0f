package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("member not found")
)
