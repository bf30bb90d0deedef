package core

import "github.com/shopspring/decimal"

// LiquidationSummary reconciles the tax collected on sales against the tax
// paid on purchases for one period. A negative VATPayable is a credit
// carried forward to the next period.
type LiquidationSummary struct {
	Period         string
	TotalInvoices  decimal.Decimal
	VATInvoices    decimal.Decimal
	TotalNotes     decimal.Decimal
	VATNotes       decimal.Decimal
	NetSales       decimal.Decimal
	VATOnSales     decimal.Decimal
	TotalPurchases decimal.Decimal
	VATOnPurchases decimal.Decimal
	VATPayable     decimal.Decimal
}

// BuildLiquidationSummary aggregates an already-filtered period snapshot.
// Pure: no side effects, safe to run concurrently across periods. Invoice
// eligibility follows the sales declaration: voided invoices count only
// when a credit note in the snapshot negates them.
func BuildLiquidationSummary(period PeriodSelection, invoices []Invoice, notes []CreditDebitNote, expenses []Expense) LiquidationSummary {
	s := LiquidationSummary{Period: period.Period}

	noted := make(map[string]bool, len(notes))
	for _, n := range notes {
		if n.Kind == NoteCredit {
			noted[n.AffectedFiscalNum] = true
		}
	}

	for _, inv := range invoices {
		if inv.Status == StatusVoided && !noted[inv.FiscalNumber] {
			continue
		}
		s.TotalInvoices = s.TotalInvoices.Add(inv.TotalAmount)
		s.VATInvoices = s.VATInvoices.Add(inv.VATAmount)
	}
	for _, n := range notes {
		if n.Kind != NoteCredit {
			continue
		}
		s.TotalNotes = s.TotalNotes.Add(n.TotalAmount)
		s.VATNotes = s.VATNotes.Add(n.VATAmount)
	}
	for _, e := range expenses {
		s.TotalPurchases = s.TotalPurchases.Add(e.TotalAmount)
		s.VATOnPurchases = s.VATOnPurchases.Add(e.VATAmount)
	}

	s.NetSales = s.TotalInvoices.Sub(s.TotalNotes)
	s.VATOnSales = s.VATInvoices.Sub(s.VATNotes)
	s.VATPayable = s.VATOnSales.Sub(s.VATOnPurchases)
	return s
}
