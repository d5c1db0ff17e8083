package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound               = errors.New("entity not found")
	ErrAlreadyExists          = errors.New("entity already exists")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrAlreadyEnrolled        = errors.New("already enrolled until the next 8th")
	ErrInquiryNotApproved     = errors.New("inquiry has not been approved")
	ErrSignatureMismatch      = errors.New("gateway signature mismatch")
	ErrDuplicateInquiry       = errors.New("inquiry already submitted")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidPhoneNumber     = errors.New("invalid phone number format")
	ErrOTPNotFound            = errors.New("otp not found or expired")
	ErrOTPMismatch            = errors.New("otp does not match")
	ErrRateLimited            = errors.New("too many requests")

	// Infra-level errors surfaced through repositories
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
)
