package benchmark

import "errors"

// Sentinel kinds for composition errors.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotInPopulation  = errors.New("chapter not in population")
	ErrUnknownDimension = errors.New("unknown dimension")
)
