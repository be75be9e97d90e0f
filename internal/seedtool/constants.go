package seedtool

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	ProcessingDelay      = 5 * time.Second
	PercentageMultiplier = 100
)

// Dimensions queried during ranking retrieval.
var dimensionNames = []string{"engagement", "activity", "revenue", "growth", "retention"}
