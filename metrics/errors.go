package metrics

import "errors"

var (
	// ErrInvalidOTPBounds is returned by Calculate when the configured
	// on-time-performance window is nonsensical: NoEarlierThanMin must
	// be negative, NoLaterThanMin must be positive.
	ErrInvalidOTPBounds = errors.New("metrics: no_earlier_than must be negative and no_later_than must be positive")

	// ErrAVLRequiredButMissing is returned when opts.DataOptions
	// requests AVL metrics but no AVL events were supplied.
	ErrAVLRequiredButMissing = errors.New("metrics: AVL requested in data options but no AVL records given")
)
