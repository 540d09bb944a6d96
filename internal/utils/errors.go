package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrProducerNotFound   = errors.New("PRODUCER_NOT_FOUND")
	ErrPendingNotFound    = errors.New("PENDING_NOT_FOUND")
	ErrOriginalNotFound   = errors.New("ORIGINAL_NOT_FOUND")
	ErrNotPending         = errors.New("NOT_PENDING")
	ErrInvalidSubmission  = errors.New("INVALID_SUBMISSION")
	ErrImageRejected      = errors.New("IMAGE_REJECTED")
)
