package core

import "errors"

// Allocator errors.
var (
	ErrNoSequenceConfigured = errors.New("no active fiscal sequence configured for document type")
	ErrSequenceExhausted    = errors.New("fiscal sequence exhausted")
	ErrInvalidRange         = errors.New("invalid sequence range")
	ErrOverlappingRange     = errors.New("an active sequence already exists for this document type")
)

// Lifecycle errors.
var (
	ErrEmptyLineItems          = errors.New("invoice must have at least one line item")
	ErrOverpaymentRejected     = errors.New("payment exceeds invoice total")
	ErrInvalidStatusTransition = errors.New("invalid invoice status transition")
)

// ErrEmptyPeriodSelection is returned by the exporters when the period holds
// no eligible records. It is a warning, not a failure: the returned artifact
// still carries a valid header-only file.
var ErrEmptyPeriodSelection = errors.New("no records in the selected period")
