package core_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"fiscal-engine/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTaxID = "131223331"

func testPeriod() core.PeriodSelection {
	return core.PeriodSelection{
		TenantID:  1,
		Period:    "202603",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-31",
	}
}

func testInvoice(ncf string, status core.InvoiceStatus) core.Invoice {
	return core.Invoice{
		TenantID:     1,
		ClientID:     7,
		ClientName:   "Comercial Duarte",
		ClientTaxID:  "101000001",
		Date:         "2026-03-10",
		Subtotal:     d("1000.00"),
		VATAmount:    d("180.00"),
		ExciseAmount: d("0.00"),
		TipAmount:    d("0.00"),
		TotalAmount:  d("1180.00"),
		PaidAmount:   d("0.00"),
		FiscalNumber: ncf,
		Status:       status,
	}
}

func testExpense(receipt string) core.Expense {
	return core.Expense{
		ID:                    1,
		TenantID:              1,
		SupplierName:          "Ferretería Central",
		SupplierTaxID:         "401516259",
		Date:                  "2026-03-05",
		Subtotal:              d("500.00"),
		VATAmount:             d("90.00"),
		TotalAmount:           d("590.00"),
		SupplierReceiptNumber: receipt,
		CategoryCode:          "09-ADQUISICIONES",
	}
}

// ── 606 ──────────────────────────────────────────────────────────────────────

func TestExport606_Layout(t *testing.T) {
	artifact, err := core.Export606(testTaxID, testPeriod(), []core.Expense{testExpense("B0100004912")})
	require.NoError(t, err)

	lines := strings.Split(artifact.Content, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "606|131223331|202603", lines[0])

	fields := strings.Split(lines[1], "|")
	require.Len(t, fields, 14)
	assert.Equal(t, "401516259  ", fields[0], "tax id padded to 11")
	assert.Equal(t, "1", fields[1], "9-digit id classifies as business")
	assert.Equal(t, "09", fields[2], "category truncated to 2 chars")
	assert.Equal(t, "B0100004912", fields[3])
	assert.Equal(t, strings.Repeat(" ", 11), fields[4], "affected receipt blank")
	assert.Equal(t, "20260305", fields[5])
	assert.Equal(t, "90.00", fields[6])
	assert.Equal(t, "0.00", fields[7], "withheld VAT always zero")
	assert.Equal(t, "500.00", fields[8])
	assert.Equal(t, "0.00", fields[9], "tip always zero on purchases")
	assert.Equal(t, []string{"0.00", "0.00", "0.00"}, fields[10:13])
	assert.Equal(t, "01", fields[13], "payment form constant")
	assert.False(t, strings.HasSuffix(artifact.Content, "\n"), "no trailing empty line")
}

func TestExport606_SkipsExpensesWithoutReceipt(t *testing.T) {
	artifact, err := core.Export606(testTaxID, testPeriod(), []core.Expense{
		testExpense("B0100004912"),
		testExpense(""),
	})
	require.NoError(t, err)
	assert.Len(t, strings.Split(artifact.Content, "\n"), 2)
}

func TestExport606_MultibyteCategoryStaysValidUTF8(t *testing.T) {
	e := testExpense("B0100004912")
	// Category wider than the field, with a multibyte rune at the cut.
	e.CategoryCode = "9Ñ-SERVICIOS"

	artifact, err := core.Export606(testTaxID, testPeriod(), []core.Expense{e})
	require.NoError(t, err)

	line := strings.Split(artifact.Content, "\n")[1]
	assert.True(t, utf8.ValidString(line), "declaration must stay valid UTF-8")
	assert.Equal(t, "9Ñ", strings.Split(line, "|")[2], "truncation counts characters, not bytes")
}

func TestExport606_EmptyPeriod(t *testing.T) {
	artifact, err := core.Export606(testTaxID, testPeriod(), nil)
	assert.ErrorIs(t, err, core.ErrEmptyPeriodSelection)
	assert.Equal(t, "606|131223331|202603", artifact.Content, "header-only file still emitted")
}

func TestExport606_NegativeAmountsRejected(t *testing.T) {
	bad := testExpense("B0100004912")
	bad.Subtotal = d("-10.00")
	_, err := core.Export606(testTaxID, testPeriod(), []core.Expense{bad})
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrEmptyPeriodSelection)
}

// ── 607 ──────────────────────────────────────────────────────────────────────

func TestExport607_RoundTrip(t *testing.T) {
	inv := testInvoice("B0200000000001", core.StatusIssued)
	artifact, err := core.Export607(testTaxID, testPeriod(), []core.Invoice{inv}, nil)
	require.NoError(t, err)

	lines := strings.Split(artifact.Content, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "607|131223331|202603|1", lines[0])

	fields := strings.Split(lines[1], "|")
	require.Len(t, fields, 22)
	// Re-parsing the record recovers the fiscal number, date and total.
	assert.Equal(t, inv.FiscalNumber, fields[2])
	assert.Equal(t, "20260310", fields[5])
	assert.Equal(t, "1180.00", fields[6])
	assert.Equal(t, "180.00", fields[7])
	assert.Equal(t, "01", fields[4], "income type for invoices")
	assert.Equal(t, "", fields[3], "no affected number on invoice lines")
}

func TestExport607_PaymentColumns(t *testing.T) {
	unpaid := testInvoice("B0200000000001", core.StatusIssued)
	paid := testInvoice("B0200000000002", core.StatusPartiallyPaid)
	paid.PaidAmount = d("100.00")

	artifact, err := core.Export607(testTaxID, testPeriod(), []core.Invoice{unpaid, paid}, nil)
	require.NoError(t, err)

	lines := strings.Split(artifact.Content, "\n")
	unpaidFields := strings.Split(lines[1], "|")
	paidFields := strings.Split(lines[2], "|")

	// Columns 15..21: cash, check/transfer, card, credit, vouchers, barter, other.
	assert.Equal(t, "0.00", unpaidFields[16], "no check column without payment")
	assert.Equal(t, "1180.00", unpaidFields[18], "unpaid goes to the credit column in full")
	assert.Equal(t, "1180.00", paidFields[16], "any payment puts the full total in check/transfer")
	assert.Equal(t, "0.00", paidFields[18])
}

func TestExport607_CreditNoteNegatesAmounts(t *testing.T) {
	inv := testInvoice("B0200000000002", core.StatusVoided)
	note := core.CreditDebitNote{
		TenantID:           1,
		Kind:               core.NoteCredit,
		AffectedFiscalNum:  inv.FiscalNumber,
		FiscalNumber:       "B0400000001",
		Date:               "2026-03-15",
		ClientTaxID:        inv.ClientTaxID,
		Subtotal:           inv.Subtotal,
		VATAmount:          inv.VATAmount,
		TotalAmount:        inv.TotalAmount,
		ModificationReason: core.ReasonVoided,
	}

	artifact, err := core.Export607(testTaxID, testPeriod(), []core.Invoice{inv}, []core.CreditDebitNote{note})
	require.NoError(t, err)

	lines := strings.Split(artifact.Content, "\n")
	require.Len(t, lines, 3, "note-voided invoice stays listed plus the note record")
	assert.Equal(t, "607|131223331|202603|2", lines[0])

	noteFields := strings.Split(lines[2], "|")
	assert.Equal(t, "B0400000001", noteFields[2])
	assert.Equal(t, inv.FiscalNumber, noteFields[3], "affected number carries the original NCF")
	assert.Equal(t, "04", noteFields[4], "income type for credit notes")
	assert.Equal(t, "-1180.00", noteFields[6])
	assert.Equal(t, "-180.00", noteFields[7])
	for _, f := range noteFields[15:] {
		assert.Equal(t, "0.00", f, "no payment column on note records")
	}
}

func TestExport607_AdministrativeVoidExcluded(t *testing.T) {
	kept := testInvoice("B0200000000001", core.StatusIssued)
	adminVoided := testInvoice("B0200000000002", core.StatusVoided)

	artifact, err := core.Export607(testTaxID, testPeriod(), []core.Invoice{kept, adminVoided}, nil)
	require.NoError(t, err)

	lines := strings.Split(artifact.Content, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "607|131223331|202603|1", lines[0])
	assert.NotContains(t, artifact.Content, "B0200000000002")
}

func TestExport607_ClassificationByLength(t *testing.T) {
	business := testInvoice("B0200000000001", core.StatusIssued)
	business.ClientTaxID = "1-01-00000-1" // 9 digits once stripped
	individual := testInvoice("B0200000000002", core.StatusIssued)
	individual.ClientTaxID = "001-0000001-8" // 11 digits once stripped
	unknown := testInvoice("B0200000000003", core.StatusIssued)
	unknown.ClientTaxID = "12345"

	artifact, err := core.Export607(testTaxID, testPeriod(),
		[]core.Invoice{business, individual, unknown}, nil)
	require.NoError(t, err)

	lines := strings.Split(artifact.Content, "\n")
	assert.Equal(t, "1", strings.Split(lines[1], "|")[1])
	assert.Equal(t, "2", strings.Split(lines[2], "|")[1])
	assert.Equal(t, "", strings.Split(lines[3], "|")[1])
}

// ── 608 ──────────────────────────────────────────────────────────────────────

func TestExport608_MergesAndDeduplicates(t *testing.T) {
	voided := testInvoice("B0200000000002", core.StatusVoided)
	// Note voiding the same invoice: must not produce a second record.
	dupNote := core.CreditDebitNote{
		Kind:               core.NoteCredit,
		AffectedFiscalNum:  voided.FiscalNumber,
		FiscalNumber:       "B0400000001",
		Date:               "2026-03-15",
		ModificationReason: core.ReasonVoided,
	}
	// Note voiding an invoice dated outside the period: the note's date is
	// inside, so the affected number is still declared.
	outOfRangeInvoiceNote := core.CreditDebitNote{
		Kind:               core.NoteCredit,
		AffectedFiscalNum:  "B0200000000001",
		FiscalNumber:       "B0400000002",
		Date:               "2026-03-20",
		ModificationReason: core.ReasonVoided,
	}
	// Non-"01" notes never reach the 608.
	adjustment := core.CreditDebitNote{
		Kind:               core.NoteCredit,
		AffectedFiscalNum:  "B0200000000009",
		FiscalNumber:       "B0400000003",
		Date:               "2026-03-21",
		ModificationReason: "02",
	}

	artifact, err := core.Export608(testTaxID, testPeriod(),
		[]core.Invoice{voided},
		[]core.CreditDebitNote{dupNote, outOfRangeInvoiceNote, adjustment})
	require.NoError(t, err)

	lines := strings.Split(artifact.Content, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "608|131223331|202603|2", lines[0])
	// Ordered by fiscal number; invoice-sourced record keeps the invoice date.
	assert.Equal(t, "B0200000000001|20260320|01", lines[1])
	assert.Equal(t, "B0200000000002|20260310|01", lines[2])
}

func TestExport608_EmptyPeriod(t *testing.T) {
	artifact, err := core.Export608(testTaxID, testPeriod(), nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyPeriodSelection)
	assert.Equal(t, "608|131223331|202603|0", artifact.Content)
}

// ── Filenames ────────────────────────────────────────────────────────────────

func TestArtifactFilenames(t *testing.T) {
	artifact, err := core.Export606(testTaxID, testPeriod(), []core.Expense{testExpense("B0100004912")})
	require.NoError(t, err)

	assert.Equal(t, "DGII_606_131223331_202603.txt", artifact.MachineName)
	assert.Equal(t, "606 Marzo 2026 - 131223331.txt", artifact.DisplayName)
	assert.NotEqual(t, artifact.MachineName, artifact.DisplayName)
}
