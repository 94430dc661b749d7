package models

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrInvalidState        = errors.New("record status does not allow this operation")
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrEligibility         = errors.New("withdrawal eligibility requirements not met")
	ErrMissingPayoutInfo   = errors.New("no withdrawal account on file")
	ErrConflict            = errors.New("record was modified concurrently")
)
