package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant is a registered business operating under the fiscal regime.
// TaxID is the government-issued identifier (RNC) printed on every declaration.
type Tenant struct {
	ID    int    `json:"id"`
	TaxID string `json:"tax_id"`
	Name  string `json:"name"`
}

// Regulator-defined document type codes. The code selects which fiscal
// sequence an NCF is drawn from and how wide its numeric part is.
const (
	DocTypeFiscalCredit  = "01"
	DocTypeFinalConsumer = "02"
	DocTypeDebitNote     = "03"
	DocTypeCreditNote    = "04"
	DocTypeSpecialRegime = "14"
	DocTypeGovernmental  = "15"
)

// ncfWidths maps document type codes to the zero-padded width of the numeric
// part of the NCF. Final-consumer and special-regime receipts use 10 digits;
// everything else uses 8. Regulatory convention, kept as a table so new
// types can be added without touching the allocator.
var ncfWidths = map[string]int{
	DocTypeFinalConsumer: 10,
	DocTypeSpecialRegime: 10,
}

const defaultNCFWidth = 8

// NCFWidth returns the numeric width for a document type code.
func NCFWidth(typeCode string) int {
	if w, ok := ncfWidths[typeCode]; ok {
		return w
	}
	return defaultNCFWidth
}

// FiscalSequence is an authorized range of fiscal numbers for one tenant and
// document type. NextNumber is the cursor: the next number to be issued.
// Invariant: RangeStart <= NextNumber <= RangeEnd+1; once NextNumber passes
// RangeEnd the sequence is exhausted. Rows are never deleted (audit trail);
// retired ranges are deactivated instead.
type FiscalSequence struct {
	ID               int       `json:"id"`
	TenantID         int       `json:"tenant_id"`
	DocumentTypeCode string    `json:"document_type_code"`
	NumberPrefix     string    `json:"number_prefix"`
	RangeStart       int64     `json:"range_start"`
	RangeEnd         int64     `json:"range_end"`
	NextNumber       int64     `json:"next_number"`
	Active           bool      `json:"active"`
	LowCapacity      bool      `json:"low_capacity"`
	CreatedAt        time.Time `json:"created_at"`
}

// Remaining returns how many numbers the sequence can still issue.
func (s *FiscalSequence) Remaining() int64 {
	if s.NextNumber > s.RangeEnd {
		return 0
	}
	return s.RangeEnd - s.NextNumber + 1
}

// InvoiceStatus is the settlement state of an invoice.
//
//	ISSUED → PARTIALLY_PAID → PAID
//	ISSUED / PARTIALLY_PAID → OVERDUE (time-triggered, reversed by payment)
//	any non-voided state → VOIDED (reason-"01" credit note or admin action)
type InvoiceStatus string

const (
	StatusIssued        InvoiceStatus = "ISSUED"
	StatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	StatusPaid          InvoiceStatus = "PAID"
	StatusOverdue       InvoiceStatus = "OVERDUE"
	StatusVoided        InvoiceStatus = "VOIDED"
)

// Invoice is a fiscally numbered sales document. Financial fields are
// immutable once the invoice is PAID or VOIDED; only audit entries and
// comments may still be appended.
type Invoice struct {
	ID               int             `json:"id"`
	TenantID         int             `json:"tenant_id"`
	ClientID         int             `json:"client_id"`
	ClientName       string          `json:"client_name"`
	ClientTaxID      string          `json:"client_tax_id"`
	DocumentTypeCode string          `json:"document_type_code"`
	Date             string          `json:"date"`     // YYYY-MM-DD
	DueDate          string          `json:"due_date"` // YYYY-MM-DD
	Lines            []InvoiceLine   `json:"lines"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	AppliesVAT       bool            `json:"applies_vat"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	AppliesExcise    bool            `json:"applies_excise"`
	ExciseAmount     decimal.Decimal `json:"excise_amount"`
	AppliesLegalTip  bool            `json:"applies_legal_tip"`
	TipAmount        decimal.Decimal `json:"tip_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	FiscalNumber     string          `json:"fiscal_number"`
	Status           InvoiceStatus   `json:"status"`
	SourceQuoteID    *int            `json:"source_quote_id,omitempty"`
	SourceTemplateID *int            `json:"source_template_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// InvoiceLine is one line item on an invoice.
type InvoiceLine struct {
	ID          int             `json:"id"`
	InvoiceID   int             `json:"invoice_id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// AuditEntry is one record in an invoice's append-only audit trail.
// Entries are insertion-ordered and never updated or deleted.
type AuditEntry struct {
	ID        int       `json:"id"`
	InvoiceID int       `json:"invoice_id"`
	Entry     string    `json:"entry"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a free-text note on an invoice, append-only like the audit trail.
type Comment struct {
	ID        int       `json:"id"`
	InvoiceID int       `json:"invoice_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteKind distinguishes credit notes from debit notes.
type NoteKind string

const (
	NoteCredit NoteKind = "CREDIT"
	NoteDebit  NoteKind = "DEBIT"
)

// ReasonVoided is the regulator's modification reason meaning
// "deterioration / voided original". It is the only reason code that forces
// the affected invoice to VOIDED as a side effect.
const ReasonVoided = "01"

// CreditDebitNote adjusts or reverses a previously issued invoice.
// Immutable once created.
type CreditDebitNote struct {
	ID                 int             `json:"id"`
	TenantID           int             `json:"tenant_id"`
	Kind               NoteKind        `json:"kind"`
	AffectedInvoiceID  int             `json:"affected_invoice_id"`
	AffectedFiscalNum  string          `json:"affected_fiscal_number"`
	FiscalNumber       string          `json:"fiscal_number"`
	Date               string          `json:"date"` // YYYY-MM-DD
	ClientID           int             `json:"client_id"`
	ClientName         string          `json:"client_name"`
	ClientTaxID        string          `json:"client_tax_id"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	VATAmount          decimal.Decimal `json:"vat_amount"`
	ExciseAmount       decimal.Decimal `json:"excise_amount"`
	TipAmount          decimal.Decimal `json:"tip_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	ModificationReason string          `json:"modification_reason_code"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Expense is a purchase record consumed read-only from the expense feed.
// Only expenses carrying a supplier receipt number are eligible for the
// purchases declaration.
type Expense struct {
	ID                    int             `json:"id"`
	TenantID              int             `json:"tenant_id"`
	SupplierName          string          `json:"supplier_name"`
	SupplierTaxID         string          `json:"supplier_tax_id"`
	Date                  string          `json:"date"` // YYYY-MM-DD
	Subtotal              decimal.Decimal `json:"subtotal"`
	VATAmount             decimal.Decimal `json:"vat_amount"`
	ExciseAmount          decimal.Decimal `json:"excise_amount"`
	TipAmount             decimal.Decimal `json:"tip_amount"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	SupplierReceiptNumber string          `json:"supplier_receipt_number"`
	CategoryCode          string          `json:"category_code"`
}

// PeriodSelection is a pure value bounding a declaration period.
// Period is YYYYMM; StartDate/EndDate are the inclusive day bounds.
type PeriodSelection struct {
	TenantID  int
	Period    string // YYYYMM
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// PeriodOf builds the selection for a calendar month.
func PeriodOf(tenantID, year int, month time.Month) PeriodSelection {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return PeriodSelection{
		TenantID:  tenantID,
		Period:    start.Format("200601"),
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	}
}
