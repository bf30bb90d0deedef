package core

import "github.com/google/uuid"

// Event is a domain event emitted by a core mutator. Mutators return the
// changed entity plus the events describing its side effects; they never
// perform notification or accounting work themselves. A dispatcher outside
// the core subscribes and fans events out to collaborators.
type Event interface {
	EventName() string
	EventID() string
}

type eventMeta struct {
	ID string `json:"event_id"`
}

func newEventMeta() eventMeta {
	return eventMeta{ID: uuid.NewString()}
}

func (m eventMeta) EventID() string { return m.ID }

// SequenceLowCapacity fires when a sequence crosses 90% consumption.
// Emitted at most once per sequence, on the false→true transition.
type SequenceLowCapacity struct {
	eventMeta
	TenantID         int    `json:"tenant_id"`
	SequenceID       int    `json:"sequence_id"`
	DocumentTypeCode string `json:"document_type_code"`
	NumberPrefix     string `json:"number_prefix"`
	Remaining        int64  `json:"remaining"`
}

func (SequenceLowCapacity) EventName() string { return "sequence.low_capacity" }

// InvoiceCreated fires when an invoice is persisted with its fiscal number.
type InvoiceCreated struct {
	eventMeta
	TenantID     int    `json:"tenant_id"`
	InvoiceID    int    `json:"invoice_id"`
	FiscalNumber string `json:"fiscal_number"`
}

func (InvoiceCreated) EventName() string { return "invoice.created" }

// InvoicePaid fires when a payment settles the invoice in full.
type InvoicePaid struct {
	eventMeta
	TenantID  int `json:"tenant_id"`
	InvoiceID int `json:"invoice_id"`
}

func (InvoicePaid) EventName() string { return "invoice.paid" }

// InvoiceOverdue fires when the scheduled check flips an unpaid invoice
// past its due date to OVERDUE.
type InvoiceOverdue struct {
	eventMeta
	TenantID     int    `json:"tenant_id"`
	InvoiceID    int    `json:"invoice_id"`
	FiscalNumber string `json:"fiscal_number"`
}

func (InvoiceOverdue) EventName() string { return "invoice.overdue" }

// InvoiceVoided fires when an invoice is forced to VOIDED, either by a
// reason-"01" credit note or by direct administrative action.
// NoteFiscalNumber is empty for administrative voids.
type InvoiceVoided struct {
	eventMeta
	TenantID         int    `json:"tenant_id"`
	InvoiceID        int    `json:"invoice_id"`
	FiscalNumber     string `json:"fiscal_number"`
	NoteFiscalNumber string `json:"note_fiscal_number,omitempty"`
}

func (InvoiceVoided) EventName() string { return "invoice.voided" }
