package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeclarationService assembles period snapshots from the store and runs the
// pure exporters and the liquidation calculator over them. All methods are
// read-only over their snapshot and safe to run concurrently across
// tenants and periods.
type DeclarationService interface {
	// Purchases builds the 606 artifact for the period.
	Purchases(ctx context.Context, period PeriodSelection) (Artifact, error)
	// Sales builds the 607 artifact for the period.
	Sales(ctx context.Context, period PeriodSelection) (Artifact, error)
	// VoidedDocuments builds the 608 artifact for the period.
	VoidedDocuments(ctx context.Context, period PeriodSelection) (Artifact, error)
	// LiquidationSummary computes the period's net-tax-payable figures.
	LiquidationSummary(ctx context.Context, period PeriodSelection) (*LiquidationSummary, error)
}

type declarationService struct {
	pool *pgxpool.Pool
	feed ExpenseFeed
}

func NewDeclarationService(pool *pgxpool.Pool, feed ExpenseFeed) DeclarationService {
	return &declarationService{pool: pool, feed: feed}
}

// tenantTaxID resolves the tax identifier stamped on every artifact header.
func (s *declarationService) tenantTaxID(ctx context.Context, tenantID int) (string, error) {
	var taxID string
	err := s.pool.QueryRow(ctx, "SELECT tax_id FROM tenants WHERE id = $1", tenantID).Scan(&taxID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("tenant %d not found", tenantID)
		}
		return "", fmt.Errorf("failed to resolve tenant %d: %w", tenantID, err)
	}
	return taxID, nil
}

func (s *declarationService) Purchases(ctx context.Context, period PeriodSelection) (Artifact, error) {
	taxID, err := s.tenantTaxID(ctx, period.TenantID)
	if err != nil {
		return Artifact{}, err
	}
	expenses, err := s.feed.ExpensesForPeriod(ctx, period)
	if err != nil {
		return Artifact{}, err
	}
	return Export606(taxID, period, expenses)
}

func (s *declarationService) Sales(ctx context.Context, period PeriodSelection) (Artifact, error) {
	taxID, err := s.tenantTaxID(ctx, period.TenantID)
	if err != nil {
		return Artifact{}, err
	}
	invoices, notes, err := s.periodSnapshot(ctx, period)
	if err != nil {
		return Artifact{}, err
	}
	return Export607(taxID, period, invoices, notes)
}

func (s *declarationService) VoidedDocuments(ctx context.Context, period PeriodSelection) (Artifact, error) {
	taxID, err := s.tenantTaxID(ctx, period.TenantID)
	if err != nil {
		return Artifact{}, err
	}
	invoices, notes, err := s.periodSnapshot(ctx, period)
	if err != nil {
		return Artifact{}, err
	}
	return Export608(taxID, period, invoices, notes)
}

func (s *declarationService) LiquidationSummary(ctx context.Context, period PeriodSelection) (*LiquidationSummary, error) {
	invoices, notes, err := s.periodSnapshot(ctx, period)
	if err != nil {
		return nil, err
	}
	expenses, err := s.feed.ExpensesForPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	summary := BuildLiquidationSummary(period, invoices, notes, expenses)
	return &summary, nil
}

// periodSnapshot loads the invoices and credit/debit notes dated inside the
// period. Status filtering is the exporters' concern, not the query's.
func (s *declarationService) periodSnapshot(ctx context.Context, period PeriodSelection) ([]Invoice, []CreditDebitNote, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+invoiceColumns+` FROM invoices
		WHERE tenant_id = $1 AND invoice_date BETWEEN $2::date AND $3::date
		ORDER BY id`,
		period.TenantID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query period invoices: %w", err)
	}
	invoices, err := collectInvoices(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load period invoices: %w", err)
	}

	noteRows, err := s.pool.Query(ctx,
		"SELECT "+noteColumns+` FROM credit_debit_notes
		WHERE tenant_id = $1 AND note_date BETWEEN $2::date AND $3::date
		ORDER BY id`,
		period.TenantID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query period notes: %w", err)
	}
	notes, err := collectNotes(noteRows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load period notes: %w", err)
	}
	return invoices, notes, nil
}
