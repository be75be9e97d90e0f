package trend

import "errors"

// Sentinel kinds for synthesis errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownKind     = errors.New("unknown trend kind")
)
