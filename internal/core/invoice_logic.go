package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRates holds the regulator-set rates applied at invoice creation.
// Rates are fractions (0.18 = 18%).
type TaxRates struct {
	VAT    decimal.Decimal
	Excise decimal.Decimal
	Tip    decimal.Decimal
}

// DefaultTaxRates returns the current statutory rates: 18% VAT,
// 10% excise, 10% legal tip.
func DefaultTaxRates() TaxRates {
	return TaxRates{
		VAT:    decimal.NewFromFloat(0.18),
		Excise: decimal.NewFromFloat(0.10),
		Tip:    decimal.NewFromFloat(0.10),
	}
}

// DraftLine is one line item on a draft invoice.
type DraftLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// DraftInvoice is the input to CreateInvoice. Monetary totals are computed
// by the engine, never accepted from the caller.
type DraftInvoice struct {
	TenantID         int
	ClientID         int
	ClientName       string
	ClientTaxID      string
	DocumentTypeCode string
	Date             string // YYYY-MM-DD
	DueDate          string // YYYY-MM-DD, optional; defaults to Date
	DiscountPercent  decimal.Decimal
	AppliesVAT       bool
	AppliesExcise    bool
	AppliesLegalTip  bool
	SourceQuoteID    *int
	SourceTemplateID *int
	Lines            []DraftLine
}

// Normalize cleans up caller input before validation.
func (d *DraftInvoice) Normalize() {
	d.ClientName = strings.TrimSpace(d.ClientName)
	d.ClientTaxID = strings.TrimSpace(d.ClientTaxID)
	d.Date = strings.TrimSpace(d.Date)
	d.DueDate = strings.TrimSpace(d.DueDate)
	if d.DueDate == "" {
		d.DueDate = d.Date
	}
	if d.DocumentTypeCode == "" {
		d.DocumentTypeCode = DocTypeFinalConsumer
	}
	for i := range d.Lines {
		d.Lines[i].Description = strings.TrimSpace(d.Lines[i].Description)
	}
}

// Validate enforces the structural rules for invoice creation. Quantities
// and unit prices must be strictly positive: a negative line would produce
// a negative subtotal, which the regulatory exports do not admit.
func (d *DraftInvoice) Validate() error {
	if len(d.Lines) == 0 {
		return ErrEmptyLineItems
	}
	if d.Date == "" {
		return fmt.Errorf("invoice must specify a date")
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return fmt.Errorf("invalid invoice date format: %w", err)
	}
	if _, err := time.Parse("2006-01-02", d.DueDate); err != nil {
		return fmt.Errorf("invalid due date format: %w", err)
	}
	if d.DiscountPercent.IsNegative() || d.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("discount percent must be within [0, 100], got %s", d.DiscountPercent)
	}
	for i, line := range d.Lines {
		if !line.Quantity.IsPositive() {
			return fmt.Errorf("line %d: quantity must be > 0, got %s", i+1, line.Quantity)
		}
		if !line.UnitPrice.IsPositive() {
			return fmt.Errorf("line %d: unit price must be > 0, got %s", i+1, line.UnitPrice)
		}
	}
	return nil
}

// InvoiceTotals is the computed monetary breakdown of a draft.
type InvoiceTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	VATAmount      decimal.Decimal
	ExciseAmount   decimal.Decimal
	TipAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	LineTotals     []decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals derives the monetary fields of a draft. Taxes are computed
// on the pre-discount subtotal; the discount reduces only the net line:
//
//	total = (subtotal − discount) + vat + excise + tip
//
// All amounts are rounded to the cent.
func ComputeTotals(d *DraftInvoice, rates TaxRates) InvoiceTotals {
	var t InvoiceTotals
	for _, line := range d.Lines {
		lt := line.Quantity.Mul(line.UnitPrice).Round(2)
		t.LineTotals = append(t.LineTotals, lt)
		t.Subtotal = t.Subtotal.Add(lt)
	}
	t.DiscountAmount = t.Subtotal.Mul(d.DiscountPercent).Div(oneHundred).Round(2)
	if d.AppliesVAT {
		t.VATAmount = t.Subtotal.Mul(rates.VAT).Round(2)
	}
	if d.AppliesExcise {
		t.ExciseAmount = t.Subtotal.Mul(rates.Excise).Round(2)
	}
	if d.AppliesLegalTip {
		t.TipAmount = t.Subtotal.Mul(rates.Tip).Round(2)
	}
	t.TotalAmount = t.Subtotal.Sub(t.DiscountAmount).
		Add(t.VATAmount).Add(t.ExciseAmount).Add(t.TipAmount)
	return t
}

// allowedTransitions encodes the invoice state machine for direct status
// changes. Payment recording and note application have their own paths and
// do not consult this table.
var allowedTransitions = map[InvoiceStatus][]InvoiceStatus{
	StatusIssued:        {StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusVoided},
	StatusPartiallyPaid: {StatusPaid, StatusOverdue, StatusVoided},
	StatusPaid:          {StatusVoided},
	StatusOverdue:       {StatusPartiallyPaid, StatusPaid, StatusVoided},
	StatusVoided:        {},
}

// CanTransition reports whether a direct status change is allowed.
func CanTransition(from, to InvoiceStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
