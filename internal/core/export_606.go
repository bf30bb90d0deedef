package core

import "fmt"

// Export606 builds the purchases declaration for a period. One record per
// expense carrying a supplier receipt number; expenses without one are not
// reportable and are skipped. The caller supplies expenses already filtered
// to the period by the expense feed.
//
// Record layout (pipe-delimited):
//
//	supplier tax id (11) | classification (1) | category code (2) |
//	receipt number (11) | affected receipt (11, blank) | date YYYYMMDD |
//	VAT | withheld VAT (0.00) | subtotal | tip (0.00) |
//	other taxes ×3 (0.00) | payment form (01)
//
// Returns ErrEmptyPeriodSelection alongside a header-only artifact when no
// expense qualifies.
func Export606(tenantTaxID string, period PeriodSelection, expenses []Expense) (Artifact, error) {
	records := []string{fmt.Sprintf("606|%s|%s", tenantTaxID, period.Period)}

	for _, e := range expenses {
		if e.SupplierReceiptNumber == "" {
			continue
		}
		if e.Subtotal.IsNegative() || e.TotalAmount.IsNegative() {
			return Artifact{}, fmt.Errorf("expense %d: negative amounts cannot be declared", e.ID)
		}
		date, err := exportDate(e.Date)
		if err != nil {
			return Artifact{}, fmt.Errorf("expense %d: %w", e.ID, err)
		}

		records = append(records, fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|01",
			padRight(e.SupplierTaxID, 11),
			taxIDClassification(e.SupplierTaxID),
			padRight(e.CategoryCode, 2),
			padRight(e.SupplierReceiptNumber, 11),
			padRight("", 11),
			date,
			money(e.VATAmount),
			zeroMoney, // withheld VAT, not modeled
			money(e.Subtotal),
			zeroMoney, // legal tip never applies to purchases
			zeroMoney, zeroMoney, zeroMoney,
		))
	}

	artifact := newArtifact("606", tenantTaxID, period.Period, records)
	if len(records) == 1 {
		return artifact, ErrEmptyPeriodSelection
	}
	return artifact, nil
}
