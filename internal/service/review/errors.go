package review

import "errors"

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrAlreadyRequested = errors.New("patient already has an active review request")
	ErrPatientNotFound  = errors.New("patient not found")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidStatus    = errors.New("invalid review status")
)
