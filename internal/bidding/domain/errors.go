package domain

import "errors"

var (
	ErrMissingField     = errors.New("lot id, bidder id and amount are required")
	ErrInvalidAmount    = errors.New("bid amount is not a valid positive monetary value")
	ErrBidTooLow        = errors.New("bid amount must be greater than the current highest bid")
	ErrDuplicateBid     = errors.New("identical bid already placed by this bidder")
	ErrTransientFailure = errors.New("bid could not be placed due to storage contention")
)
