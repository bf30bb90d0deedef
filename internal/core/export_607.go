package core

import "fmt"

// income type codes for the sales declaration.
const (
	incomeTypeInvoice    = "01"
	incomeTypeCreditNote = "04"
)

// Export607 builds the sales declaration for a period: one record per
// eligible invoice plus one negated record per credit note. The header
// carries the total record count.
//
// Invoice record layout (pipe-delimited):
//
//	client tax id (11) | classification (1) | fiscal number |
//	affected fiscal number (blank) | income type (01) | date YYYYMMDD |
//	total | VAT | withholdings ×4 (0.00) | excise | other taxes (0.00) |
//	tip | payment columns ×7 (cash, check/transfer, card, credit,
//	vouchers, barter, other)
//
// Exactly one payment column is populated per invoice: check/transfer when
// any payment was recorded, credit otherwise, always for the full total.
// This reproduces the observed all-or-nothing attribution; it does not
// model partial payments across columns.
//
// Credit-note records use income type 04, carry the voided invoice's
// fiscal number in the affected field, negate every monetary column and
// populate no payment column.
//
// Voided invoices are excluded unless a credit note in the same snapshot
// references them: a note-voided invoice stays listed (its note record
// negates it), while an administratively voided one is reported only in
// the 608.
func Export607(tenantTaxID string, period PeriodSelection, invoices []Invoice, notes []CreditDebitNote) (Artifact, error) {
	creditNotes := make([]CreditDebitNote, 0, len(notes))
	noted := make(map[string]bool, len(notes))
	for _, n := range notes {
		if n.Kind != NoteCredit {
			continue
		}
		creditNotes = append(creditNotes, n)
		noted[n.AffectedFiscalNum] = true
	}

	eligible := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status == StatusVoided && !noted[inv.FiscalNumber] {
			continue
		}
		eligible = append(eligible, inv)
	}

	records := []string{fmt.Sprintf("607|%s|%s|%d",
		tenantTaxID, period.Period, len(eligible)+len(creditNotes))}

	for _, inv := range eligible {
		if inv.Subtotal.IsNegative() || inv.TotalAmount.IsNegative() {
			return Artifact{}, fmt.Errorf("invoice %s: negative amounts cannot be declared", inv.FiscalNumber)
		}
		date, err := exportDate(inv.Date)
		if err != nil {
			return Artifact{}, fmt.Errorf("invoice %s: %w", inv.FiscalNumber, err)
		}

		// All-or-nothing payment attribution, preserved as observed.
		checkCol, creditCol := zeroMoney, zeroMoney
		if inv.PaidAmount.IsPositive() {
			checkCol = money(inv.TotalAmount)
		} else {
			creditCol = money(inv.TotalAmount)
		}

		records = append(records, fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s",
			padRight(inv.ClientTaxID, 11),
			taxIDClassification(inv.ClientTaxID),
			inv.FiscalNumber,
			"",
			incomeTypeInvoice,
			date,
			money(inv.TotalAmount),
			money(inv.VATAmount),
			zeroMoney, zeroMoney, zeroMoney, zeroMoney,
			money(inv.ExciseAmount),
			zeroMoney,
			money(inv.TipAmount),
			zeroMoney, checkCol, zeroMoney, creditCol, zeroMoney, zeroMoney, zeroMoney,
		))
	}

	for _, n := range creditNotes {
		if n.Subtotal.IsNegative() || n.TotalAmount.IsNegative() {
			return Artifact{}, fmt.Errorf("note %s: negative amounts cannot be declared", n.FiscalNumber)
		}
		date, err := exportDate(n.Date)
		if err != nil {
			return Artifact{}, fmt.Errorf("note %s: %w", n.FiscalNumber, err)
		}

		records = append(records, fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s",
			padRight(n.ClientTaxID, 11),
			taxIDClassification(n.ClientTaxID),
			n.FiscalNumber,
			n.AffectedFiscalNum,
			incomeTypeCreditNote,
			date,
			money(n.TotalAmount.Neg()),
			money(n.VATAmount.Neg()),
			zeroMoney, zeroMoney, zeroMoney, zeroMoney,
			money(n.ExciseAmount.Neg()),
			zeroMoney,
			money(n.TipAmount.Neg()),
			zeroMoney, zeroMoney, zeroMoney, zeroMoney, zeroMoney, zeroMoney, zeroMoney,
		))
	}

	artifact := newArtifact("607", tenantTaxID, period.Period, records)
	if len(records) == 1 {
		return artifact, ErrEmptyPeriodSelection
	}
	return artifact, nil
}
