package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InvoiceService manages the invoice settlement lifecycle. Every mutator
// returns the changed entity plus the domain events it produced; side
// effects (notifications, accounting) belong to the dispatcher, not here.
type InvoiceService interface {
	// CreateInvoice validates the draft, computes totals, draws a fiscal
	// number and persists the invoice, all in one transaction. A failed
	// allocation persists nothing.
	CreateInvoice(ctx context.Context, draft DraftInvoice) (*Invoice, []Event, error)

	// RecordPayment applies a payment. The cumulative paid amount may never
	// exceed the total; reaching it transitions the invoice to PAID.
	RecordPayment(ctx context.Context, invoiceID int, amount decimal.Decimal) (*Invoice, []Event, error)

	// CreateNote records a credit or debit note against an invoice. A credit
	// note with reason "01" additionally forces the invoice to VOIDED; note
	// insert and status flip are one transaction.
	CreateNote(ctx context.Context, input NoteInput) (*CreditDebitNote, []Event, error)

	// SetStatus performs a direct administrative transition.
	SetStatus(ctx context.Context, invoiceID int, status InvoiceStatus) (*Invoice, []Event, error)

	// BulkSetStatus applies SetStatus to each id independently; one failure
	// does not roll back the others.
	BulkSetStatus(ctx context.Context, invoiceIDs []int, status InvoiceStatus) ([]BulkStatusResult, []Event)

	// MarkOverdue flips unpaid invoices past their due date to OVERDUE,
	// returning one InvoiceOverdue event per transitioned invoice.
	MarkOverdue(ctx context.Context, tenantID int) ([]Event, error)

	// AddComment appends to the invoice's append-only comment log.
	AddComment(ctx context.Context, invoiceID int, body string) (*Comment, error)

	// Queries
	GetInvoice(ctx context.Context, invoiceID int) (*Invoice, error)
	GetInvoices(ctx context.Context, tenantID int, status *InvoiceStatus) ([]Invoice, error)
	GetAuditTrail(ctx context.Context, invoiceID int) ([]AuditEntry, error)
	GetNotes(ctx context.Context, tenantID int) ([]CreditDebitNote, error)
}

// NoteInput is the input to CreateNote. When TotalAmount is zero the note
// mirrors the affected invoice's full amounts, which is the common case for
// a reason-"01" void.
type NoteInput struct {
	Kind              NoteKind
	AffectedInvoiceID int
	Date              string // YYYY-MM-DD
	Reason            string
	Subtotal          decimal.Decimal
	VATAmount         decimal.Decimal
	ExciseAmount      decimal.Decimal
	TipAmount         decimal.Decimal
	TotalAmount       decimal.Decimal
}

// BulkStatusResult is the per-invoice outcome of a bulk transition.
type BulkStatusResult struct {
	InvoiceID int
	Err       error
}

type invoiceService struct {
	pool  *pgxpool.Pool
	seq   SequenceService
	rates TaxRates
	now   func() time.Time
}

// NewInvoiceService constructs an InvoiceService using the statutory
// default tax rates and the wall clock.
func NewInvoiceService(pool *pgxpool.Pool, seq SequenceService) InvoiceService {
	return &invoiceService{pool: pool, seq: seq, rates: DefaultTaxRates(), now: time.Now}
}

// NewInvoiceServiceWithConfig allows tests and special regimes to override
// the tax rates and the clock used for the overdue check.
func NewInvoiceServiceWithConfig(pool *pgxpool.Pool, seq SequenceService, rates TaxRates, now func() time.Time) InvoiceService {
	if now == nil {
		now = time.Now
	}
	return &invoiceService{pool: pool, seq: seq, rates: rates, now: now}
}

// ── Creation ─────────────────────────────────────────────────────────────────

func (s *invoiceService) CreateInvoice(ctx context.Context, draft DraftInvoice) (*Invoice, []Event, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, nil, err
	}
	totals := ComputeTotals(&draft, s.rates)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Allocation happens inside the invoice transaction: exhaustion rolls
	// everything back and the caller sees the allocator's error unchanged.
	ncf, events, err := s.seq.IssueNextTx(ctx, tx, draft.TenantID, draft.DocumentTypeCode)
	if err != nil {
		return nil, nil, err
	}

	var invoiceID int
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (tenant_id, client_id, client_name, client_tax_id, document_type_code,
			invoice_date, due_date, subtotal, discount_percent, discount_amount,
			applies_vat, vat_amount, applies_excise, excise_amount, applies_legal_tip, tip_amount,
			total_amount, paid_amount, fiscal_number, status, source_quote_id, source_template_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 0, $18, $19, $20, $21)
		RETURNING id
	`, draft.TenantID, draft.ClientID, draft.ClientName, draft.ClientTaxID, draft.DocumentTypeCode,
		draft.Date, draft.DueDate, totals.Subtotal, draft.DiscountPercent, totals.DiscountAmount,
		draft.AppliesVAT, totals.VATAmount, draft.AppliesExcise, totals.ExciseAmount,
		draft.AppliesLegalTip, totals.TipAmount, totals.TotalAmount, ncf, string(StatusIssued),
		draft.SourceQuoteID, draft.SourceTemplateID,
	).Scan(&invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	for i, line := range draft.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_lines (invoice_id, line_number, description, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, invoiceID, i+1, line.Description, line.Quantity, line.UnitPrice, totals.LineTotals[i])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to insert invoice line %d: %w", i+1, err)
		}
	}

	if err := appendAudit(ctx, tx, invoiceID, "created"); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit invoice creation: %w", err)
	}

	events = append(events, InvoiceCreated{
		eventMeta:    newEventMeta(),
		TenantID:     draft.TenantID,
		InvoiceID:    invoiceID,
		FiscalNumber: ncf,
	})

	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, events, err
	}
	return inv, events, nil
}

// ── Payments ─────────────────────────────────────────────────────────────────

func (s *invoiceService) RecordPayment(ctx context.Context, invoiceID int, amount decimal.Decimal) (*Invoice, []Event, error) {
	if !amount.IsPositive() {
		return nil, nil, fmt.Errorf("payment amount must be > 0, got %s", amount)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		tenantID int
		status   InvoiceStatus
		total    decimal.Decimal
		paid     decimal.Decimal
	)
	err = tx.QueryRow(ctx, `
		SELECT tenant_id, status, total_amount, paid_amount
		FROM invoices WHERE id = $1
		FOR UPDATE
	`, invoiceID).Scan(&tenantID, &status, &total, &paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("invoice %d not found", invoiceID)
		}
		return nil, nil, fmt.Errorf("failed to lock invoice %d: %w", invoiceID, err)
	}

	if status == StatusVoided {
		return nil, nil, fmt.Errorf("%w: invoice %d is %s", ErrInvalidStatusTransition, invoiceID, status)
	}
	newPaid := paid.Add(amount)
	if newPaid.GreaterThan(total) {
		return nil, nil, fmt.Errorf("%w: %s + %s > %s", ErrOverpaymentRejected,
			paid.StringFixed(2), amount.StringFixed(2), total.StringFixed(2))
	}

	newStatus := StatusPartiallyPaid
	if newPaid.Equal(total) {
		newStatus = StatusPaid
	}

	_, err = tx.Exec(ctx,
		"UPDATE invoices SET paid_amount = $1, status = $2 WHERE id = $3",
		newPaid, string(newStatus), invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record payment on invoice %d: %w", invoiceID, err)
	}

	entry := fmt.Sprintf("payment %s recorded (%s/%s)",
		amount.StringFixed(2), newPaid.StringFixed(2), total.StringFixed(2))
	if err := appendAudit(ctx, tx, invoiceID, entry); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	var events []Event
	if newStatus == StatusPaid {
		events = append(events, InvoicePaid{
			eventMeta: newEventMeta(),
			TenantID:  tenantID,
			InvoiceID: invoiceID,
		})
	}

	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, events, err
	}
	return inv, events, nil
}

// ── Credit / debit notes ─────────────────────────────────────────────────────

func (s *invoiceService) CreateNote(ctx context.Context, input NoteInput) (*CreditDebitNote, []Event, error) {
	if input.Kind != NoteCredit && input.Kind != NoteDebit {
		return nil, nil, fmt.Errorf("invalid note kind %q", input.Kind)
	}
	if input.Date == "" {
		input.Date = s.now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return nil, nil, fmt.Errorf("invalid note date format: %w", err)
	}
	if input.Reason == "" {
		return nil, nil, fmt.Errorf("note must specify a modification reason code")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var inv Invoice
	err = tx.QueryRow(ctx, `
		SELECT id, tenant_id, client_id, client_name, client_tax_id, fiscal_number, status,
		       subtotal, vat_amount, excise_amount, tip_amount, total_amount
		FROM invoices WHERE id = $1
		FOR UPDATE
	`, input.AffectedInvoiceID).Scan(
		&inv.ID, &inv.TenantID, &inv.ClientID, &inv.ClientName, &inv.ClientTaxID,
		&inv.FiscalNumber, &inv.Status,
		&inv.Subtotal, &inv.VATAmount, &inv.ExciseAmount, &inv.TipAmount, &inv.TotalAmount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("invoice %d not found", input.AffectedInvoiceID)
		}
		return nil, nil, fmt.Errorf("failed to lock invoice %d: %w", input.AffectedInvoiceID, err)
	}

	// A zero-total input mirrors the invoice in full.
	if input.TotalAmount.IsZero() {
		input.Subtotal = inv.Subtotal
		input.VATAmount = inv.VATAmount
		input.ExciseAmount = inv.ExciseAmount
		input.TipAmount = inv.TipAmount
		input.TotalAmount = inv.TotalAmount
	}

	typeCode := DocTypeCreditNote
	if input.Kind == NoteDebit {
		typeCode = DocTypeDebitNote
	}
	ncf, events, err := s.seq.IssueNextTx(ctx, tx, inv.TenantID, typeCode)
	if err != nil {
		return nil, nil, err
	}

	var note CreditDebitNote
	err = tx.QueryRow(ctx, `
		INSERT INTO credit_debit_notes (tenant_id, kind, affected_invoice_id, affected_fiscal_number,
			fiscal_number, note_date, client_id, client_name, client_tax_id,
			subtotal, vat_amount, excise_amount, tip_amount, total_amount, modification_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, tenant_id, kind, affected_invoice_id, affected_fiscal_number, fiscal_number,
			note_date::text, client_id, client_name, client_tax_id,
			subtotal, vat_amount, excise_amount, tip_amount, total_amount, modification_reason, created_at
	`, inv.TenantID, string(input.Kind), inv.ID, inv.FiscalNumber, ncf, input.Date,
		inv.ClientID, inv.ClientName, inv.ClientTaxID,
		input.Subtotal, input.VATAmount, input.ExciseAmount, input.TipAmount, input.TotalAmount,
		input.Reason,
	).Scan(
		&note.ID, &note.TenantID, &note.Kind, &note.AffectedInvoiceID, &note.AffectedFiscalNum,
		&note.FiscalNumber, &note.Date, &note.ClientID, &note.ClientName, &note.ClientTaxID,
		&note.Subtotal, &note.VATAmount, &note.ExciseAmount, &note.TipAmount, &note.TotalAmount,
		&note.ModificationReason, &note.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert note: %w", err)
	}

	entry := fmt.Sprintf("%s note %s recorded (reason %s)", input.Kind, ncf, input.Reason)
	if err := appendAudit(ctx, tx, inv.ID, entry); err != nil {
		return nil, nil, err
	}

	// Reason "01" voids the original regardless of its payment state.
	if input.Kind == NoteCredit && input.Reason == ReasonVoided && inv.Status != StatusVoided {
		_, err = tx.Exec(ctx,
			"UPDATE invoices SET status = $1 WHERE id = $2",
			string(StatusVoided), inv.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to void invoice %d: %w", inv.ID, err)
		}
		if err := appendAudit(ctx, tx, inv.ID, fmt.Sprintf("voided by credit note %s", ncf)); err != nil {
			return nil, nil, err
		}
		events = append(events, InvoiceVoided{
			eventMeta:        newEventMeta(),
			TenantID:         inv.TenantID,
			InvoiceID:        inv.ID,
			FiscalNumber:     inv.FiscalNumber,
			NoteFiscalNumber: ncf,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit note: %w", err)
	}
	return &note, events, nil
}

// ── Direct status changes ────────────────────────────────────────────────────

func (s *invoiceService) SetStatus(ctx context.Context, invoiceID int, status InvoiceStatus) (*Invoice, []Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		tenantID int
		current  InvoiceStatus
		ncf      string
	)
	err = tx.QueryRow(ctx,
		"SELECT tenant_id, status, fiscal_number FROM invoices WHERE id = $1 FOR UPDATE",
		invoiceID,
	).Scan(&tenantID, &current, &ncf)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("invoice %d not found", invoiceID)
		}
		return nil, nil, fmt.Errorf("failed to lock invoice %d: %w", invoiceID, err)
	}

	if !CanTransition(current, status) {
		return nil, nil, fmt.Errorf("%w: %s → %s", ErrInvalidStatusTransition, current, status)
	}

	_, err = tx.Exec(ctx, "UPDATE invoices SET status = $1 WHERE id = $2", string(status), invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update invoice %d status: %w", invoiceID, err)
	}
	if err := appendAudit(ctx, tx, invoiceID, fmt.Sprintf("status %s → %s", current, status)); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	var events []Event
	if status == StatusVoided {
		events = append(events, InvoiceVoided{
			eventMeta:    newEventMeta(),
			TenantID:     tenantID,
			InvoiceID:    invoiceID,
			FiscalNumber: ncf,
		})
	}

	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, events, err
	}
	return inv, events, nil
}

func (s *invoiceService) BulkSetStatus(ctx context.Context, invoiceIDs []int, status InvoiceStatus) ([]BulkStatusResult, []Event) {
	results := make([]BulkStatusResult, 0, len(invoiceIDs))
	var events []Event
	for _, id := range invoiceIDs {
		_, evs, err := s.SetStatus(ctx, id, status)
		results = append(results, BulkStatusResult{InvoiceID: id, Err: err})
		events = append(events, evs...)
	}
	return results, events
}

func (s *invoiceService) MarkOverdue(ctx context.Context, tenantID int) ([]Event, error) {
	today := s.now().Format("2006-01-02")
	rows, err := s.pool.Query(ctx, `
		UPDATE invoices
		SET status = $1
		WHERE tenant_id = $2
		  AND status IN ($3, $4)
		  AND due_date < $5::date
		RETURNING id, fiscal_number
	`, string(StatusOverdue), tenantID, string(StatusIssued), string(StatusPartiallyPaid), today)
	if err != nil {
		return nil, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var id int
		var ncf string
		if err := rows.Scan(&id, &ncf); err != nil {
			return nil, fmt.Errorf("failed to scan overdue invoice: %w", err)
		}
		events = append(events, InvoiceOverdue{
			eventMeta:    newEventMeta(),
			TenantID:     tenantID,
			InvoiceID:    id,
			FiscalNumber: ncf,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("overdue row iteration error: %w", err)
	}
	return events, nil
}

// ── Comments and audit ───────────────────────────────────────────────────────

func (s *invoiceService) AddComment(ctx context.Context, invoiceID int, body string) (*Comment, error) {
	var c Comment
	err := s.pool.QueryRow(ctx, `
		INSERT INTO invoice_comments (invoice_id, body)
		VALUES ($1, $2)
		RETURNING id, invoice_id, body, created_at
	`, invoiceID, body).Scan(&c.ID, &c.InvoiceID, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &c, nil
}

// appendAudit writes one entry to the append-only audit log.
func appendAudit(ctx context.Context, tx pgx.Tx, invoiceID int, entry string) error {
	_, err := tx.Exec(ctx,
		"INSERT INTO invoice_audit (invoice_id, entry) VALUES ($1, $2)",
		invoiceID, entry)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *invoiceService) GetAuditTrail(ctx context.Context, invoiceID int) ([]AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_id, entry, created_at
		FROM invoice_audit
		WHERE invoice_id = $1
		ORDER BY id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.InvoiceID, &e.Entry, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit row iteration error: %w", err)
	}
	return entries, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

const invoiceColumns = `
	id, tenant_id, client_id, client_name, client_tax_id, document_type_code,
	invoice_date::text, due_date::text, subtotal, discount_percent, discount_amount,
	applies_vat, vat_amount, applies_excise, excise_amount, applies_legal_tip, tip_amount,
	total_amount, paid_amount, fiscal_number, status, source_quote_id, source_template_id, created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.ClientID, &inv.ClientName, &inv.ClientTaxID,
		&inv.DocumentTypeCode, &inv.Date, &inv.DueDate, &inv.Subtotal,
		&inv.DiscountPercent, &inv.DiscountAmount,
		&inv.AppliesVAT, &inv.VATAmount, &inv.AppliesExcise, &inv.ExciseAmount,
		&inv.AppliesLegalTip, &inv.TipAmount,
		&inv.TotalAmount, &inv.PaidAmount, &inv.FiscalNumber, &inv.Status,
		&inv.SourceQuoteID, &inv.SourceTemplateID, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// collectInvoices drains an invoiceColumns result set. A connection error
// ends pgx iteration silently, so rows.Err() must be consulted before the
// partial slice is trusted; declarations built from a truncated snapshot
// would be well-formed but wrong.
func collectInvoices(rows pgx.Rows) ([]Invoice, error) {
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoice row iteration error: %w", err)
	}
	return invoices, nil
}

const noteColumns = `
	id, tenant_id, kind, affected_invoice_id, affected_fiscal_number, fiscal_number,
	note_date::text, client_id, client_name, client_tax_id,
	subtotal, vat_amount, excise_amount, tip_amount, total_amount, modification_reason, created_at`

func scanNote(row pgx.Row) (*CreditDebitNote, error) {
	var n CreditDebitNote
	err := row.Scan(
		&n.ID, &n.TenantID, &n.Kind, &n.AffectedInvoiceID, &n.AffectedFiscalNum,
		&n.FiscalNumber, &n.Date, &n.ClientID, &n.ClientName, &n.ClientTaxID,
		&n.Subtotal, &n.VATAmount, &n.ExciseAmount, &n.TipAmount, &n.TotalAmount,
		&n.ModificationReason, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// collectNotes drains a noteColumns result set; same contract as
// collectInvoices.
func collectNotes(rows pgx.Rows) ([]CreditDebitNote, error) {
	defer rows.Close()

	var notes []CreditDebitNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("note row iteration error: %w", err)
	}
	return notes, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID int) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found", invoiceID)
		}
		return nil, fmt.Errorf("failed to fetch invoice %d: %w", invoiceID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_id, line_number, description, quantity, unit_price, line_total
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_number
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.LineNumber, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoice line row iteration error: %w", err)
	}
	return inv, nil
}

func (s *invoiceService) GetInvoices(ctx context.Context, tenantID int, status *InvoiceStatus) ([]Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices WHERE tenant_id = $1"
	args := []any{tenantID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, string(*status))
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	return collectInvoices(rows)
}

func (s *invoiceService) GetNotes(ctx context.Context, tenantID int) ([]CreditDebitNote, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+noteColumns+` FROM credit_debit_notes
		WHERE tenant_id = $1
		ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	return collectNotes(rows)
}
