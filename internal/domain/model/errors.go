package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
)
