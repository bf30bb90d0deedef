package core_test

import (
	"errors"
	"testing"

	"fiscal-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestDraftInvoice_Validate(t *testing.T) {
	valid := func() core.DraftInvoice {
		return core.DraftInvoice{
			TenantID:   1,
			ClientID:   7,
			ClientName: "Comercial Duarte",
			Date:       "2026-03-10",
			Lines: []core.DraftLine{
				{Description: "Servicio", Quantity: d("2"), UnitPrice: d("150.00")},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*core.DraftInvoice)
		wantErr error
	}{
		{name: "valid draft", mutate: func(*core.DraftInvoice) {}},
		{
			name:    "no line items",
			mutate:  func(dr *core.DraftInvoice) { dr.Lines = nil },
			wantErr: core.ErrEmptyLineItems,
		},
		{
			name:   "negative quantity",
			mutate: func(dr *core.DraftInvoice) { dr.Lines[0].Quantity = d("-1") },
		},
		{
			name:   "zero unit price",
			mutate: func(dr *core.DraftInvoice) { dr.Lines[0].UnitPrice = decimal.Zero },
		},
		{
			name:   "discount above 100",
			mutate: func(dr *core.DraftInvoice) { dr.DiscountPercent = d("101") },
		},
		{
			name:   "bad date",
			mutate: func(dr *core.DraftInvoice) { dr.Date = "10/03/2026" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := valid()
			tt.mutate(&draft)
			draft.Normalize()
			err := draft.Validate()
			if tt.name == "valid draft" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestDraftInvoice_NormalizeDefaults(t *testing.T) {
	draft := core.DraftInvoice{Date: " 2026-03-10 "}
	draft.Normalize()
	assert.Equal(t, "2026-03-10", draft.Date)
	assert.Equal(t, "2026-03-10", draft.DueDate, "due date defaults to invoice date")
	assert.Equal(t, core.DocTypeFinalConsumer, draft.DocumentTypeCode)
}

func TestComputeTotals_VATInvariant(t *testing.T) {
	// With VAT at 18% and no discount, total must equal subtotal * 1.18
	// to the cent for any line set.
	lineSets := [][]core.DraftLine{
		{{Quantity: d("1"), UnitPrice: d("100.00")}},
		{{Quantity: d("3"), UnitPrice: d("33.33")}, {Quantity: d("2"), UnitPrice: d("0.05")}},
		{{Quantity: d("7.5"), UnitPrice: d("19.99")}},
		{{Quantity: d("1"), UnitPrice: d("0.01")}},
	}

	for _, lines := range lineSets {
		draft := core.DraftInvoice{AppliesVAT: true, Lines: lines}
		totals := core.ComputeTotals(&draft, core.DefaultTaxRates())

		want := totals.Subtotal.Mul(d("1.18")).Round(2)
		assert.True(t, totals.TotalAmount.Equal(want),
			"subtotal %s: total %s, want %s", totals.Subtotal, totals.TotalAmount, want)
	}
}

func TestComputeTotals_TaxesOnPreDiscountSubtotal(t *testing.T) {
	draft := core.DraftInvoice{
		DiscountPercent: d("10"),
		AppliesVAT:      true,
		AppliesLegalTip: true,
		Lines: []core.DraftLine{
			{Quantity: d("4"), UnitPrice: d("250.00")},
		},
	}
	totals := core.ComputeTotals(&draft, core.DefaultTaxRates())

	assert.Equal(t, "1000.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "100.00", totals.DiscountAmount.StringFixed(2))
	// Taxes apply to the full 1000.00, not to the discounted 900.00.
	assert.Equal(t, "180.00", totals.VATAmount.StringFixed(2))
	assert.Equal(t, "100.00", totals.TipAmount.StringFixed(2))
	assert.Equal(t, "0.00", totals.ExciseAmount.StringFixed(2))
	// (1000 - 100) + 180 + 100
	assert.Equal(t, "1180.00", totals.TotalAmount.StringFixed(2))
}

func TestComputeTotals_AllTaxes(t *testing.T) {
	draft := core.DraftInvoice{
		AppliesVAT:      true,
		AppliesExcise:   true,
		AppliesLegalTip: true,
		Lines: []core.DraftLine{
			{Quantity: d("1"), UnitPrice: d("500.00")},
		},
	}
	totals := core.ComputeTotals(&draft, core.DefaultTaxRates())

	assert.Equal(t, "90.00", totals.VATAmount.StringFixed(2))
	assert.Equal(t, "50.00", totals.ExciseAmount.StringFixed(2))
	assert.Equal(t, "50.00", totals.TipAmount.StringFixed(2))
	assert.Equal(t, "690.00", totals.TotalAmount.StringFixed(2))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, core.CanTransition(core.StatusIssued, core.StatusVoided))
	assert.True(t, core.CanTransition(core.StatusOverdue, core.StatusPaid))
	assert.True(t, core.CanTransition(core.StatusPaid, core.StatusVoided))
	assert.False(t, core.CanTransition(core.StatusVoided, core.StatusIssued))
	assert.False(t, core.CanTransition(core.StatusPaid, core.StatusIssued))
	assert.False(t, core.CanTransition(core.StatusPaid, core.StatusPartiallyPaid))
}

func TestNCFWidth(t *testing.T) {
	assert.Equal(t, 10, core.NCFWidth(core.DocTypeFinalConsumer))
	assert.Equal(t, 10, core.NCFWidth(core.DocTypeSpecialRegime))
	assert.Equal(t, 8, core.NCFWidth(core.DocTypeFiscalCredit))
	assert.Equal(t, 8, core.NCFWidth(core.DocTypeCreditNote))
	assert.Equal(t, 8, core.NCFWidth("99"))
}
