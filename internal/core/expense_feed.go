package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpenseFeed is the read-only source of purchase records. The engine never
// writes expenses; expense CRUD lives in the surrounding application.
type ExpenseFeed interface {
	// ExpensesForPeriod returns the tenant's expenses dated inside the
	// selection, ordered by date then id.
	ExpensesForPeriod(ctx context.Context, period PeriodSelection) ([]Expense, error)
}

type pgExpenseFeed struct {
	pool *pgxpool.Pool
}

// NewExpenseFeed returns an ExpenseFeed backed by the shared expenses table.
func NewExpenseFeed(pool *pgxpool.Pool) ExpenseFeed {
	return &pgExpenseFeed{pool: pool}
}

func (f *pgExpenseFeed) ExpensesForPeriod(ctx context.Context, period PeriodSelection) ([]Expense, error) {
	rows, err := f.pool.Query(ctx, `
		SELECT id, tenant_id, supplier_name, supplier_tax_id, expense_date::text,
		       subtotal, vat_amount, excise_amount, tip_amount, total_amount,
		       supplier_receipt_number, category_code
		FROM expenses
		WHERE tenant_id = $1
		  AND expense_date BETWEEN $2::date AND $3::date
		ORDER BY expense_date, id
	`, period.TenantID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.SupplierName, &e.SupplierTaxID, &e.Date,
			&e.Subtotal, &e.VATAmount, &e.ExciseAmount, &e.TipAmount, &e.TotalAmount,
			&e.SupplierReceiptNumber, &e.CategoryCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expense row iteration error: %w", err)
	}
	return expenses, nil
}
