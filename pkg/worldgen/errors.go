package worldgen

import "errors"

// Configuration errors: fail fast at Build.
var (
	ErrInvalidDimensions = errors.New("worldgen: width and height must be positive")
	ErrInvalidSeed       = errors.New("worldgen: seed out of 32-bit unsigned range")
	ErrInvalidSpeed      = errors.New("worldgen: time speed must be 0, 1, 2, or 4")
	ErrInvalidThreshold  = errors.New("worldgen: classifier thresholds out of range")
)

// Save-format errors: surfaced as typed load failures.
var (
	ErrUnknownSaveVersion   = errors.New("worldgen: unknown save format version")
	ErrTruncatedBuffer      = errors.New("worldgen: truncated save buffer")
	ErrMetadataInconsistent = errors.New("worldgen: road metadata/points inconsistency")
)
