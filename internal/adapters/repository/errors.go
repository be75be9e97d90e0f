package repository

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound = errors.New("chapter not found")
	ErrEmptyID  = errors.New("empty chapter id")
)
