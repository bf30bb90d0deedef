package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceService owns the authorized fiscal number ranges and issues NCFs.
// Issuance is an atomic read-modify-write on the sequence row: concurrent
// calls for the same tenant and document type never duplicate or skip a
// number.
type SequenceService interface {
	// RegisterSequence configures a new active range for a tenant and
	// document type. Only one active sequence per type is supported.
	RegisterSequence(ctx context.Context, tenantID int, typeCode, prefix string, rangeStart, rangeEnd int64) (*FiscalSequence, error)

	// IssueNext issues the next fiscal number in its own transaction.
	IssueNext(ctx context.Context, tenantID int, typeCode string) (string, []Event, error)

	// IssueNextTx issues the next fiscal number inside the caller's
	// transaction, so a failed caller (e.g. invoice creation) consumes
	// nothing from the range.
	IssueNextTx(ctx context.Context, tx pgx.Tx, tenantID int, typeCode string) (string, []Event, error)

	// Deactivate retires a sequence. The row is kept for audit; the tenant
	// may then register a successor range for the same type.
	Deactivate(ctx context.Context, sequenceID int) error

	// GetSequences returns all sequences of a tenant, active and retired.
	GetSequences(ctx context.Context, tenantID int) ([]FiscalSequence, error)
}

type sequenceService struct {
	pool *pgxpool.Pool
}

func NewSequenceService(pool *pgxpool.Pool) SequenceService {
	return &sequenceService{pool: pool}
}

func (s *sequenceService) RegisterSequence(ctx context.Context, tenantID int, typeCode, prefix string, rangeStart, rangeEnd int64) (*FiscalSequence, error) {
	if rangeEnd < rangeStart || rangeStart < 0 {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, rangeStart, rangeEnd)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fiscal_sequences
			WHERE tenant_id = $1 AND document_type_code = $2 AND active
		)
	`, tenantID, typeCode).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active sequence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: tenant %d type %s", ErrOverlappingRange, tenantID, typeCode)
	}

	var seq FiscalSequence
	err = tx.QueryRow(ctx, `
		INSERT INTO fiscal_sequences (tenant_id, document_type_code, number_prefix, range_start, range_end, next_number, active, low_capacity)
		VALUES ($1, $2, $3, $4, $5, $4, true, false)
		RETURNING id, tenant_id, document_type_code, number_prefix, range_start, range_end, next_number, active, low_capacity, created_at
	`, tenantID, typeCode, prefix, rangeStart, rangeEnd).Scan(
		&seq.ID, &seq.TenantID, &seq.DocumentTypeCode, &seq.NumberPrefix,
		&seq.RangeStart, &seq.RangeEnd, &seq.NextNumber, &seq.Active,
		&seq.LowCapacity, &seq.CreatedAt,
	)
	if err != nil {
		// A concurrent registration can slip between the existence check
		// and the insert; the partial unique index turns that into a
		// unique violation, which is still an overlap to the caller.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: tenant %d type %s", ErrOverlappingRange, tenantID, typeCode)
		}
		return nil, fmt.Errorf("failed to register sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sequence registration: %w", err)
	}
	return &seq, nil
}

func (s *sequenceService) IssueNext(ctx context.Context, tenantID int, typeCode string) (string, []Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ncf, events, err := s.IssueNextTx(ctx, tx, tenantID, typeCode)
	if err != nil {
		return "", nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", nil, fmt.Errorf("failed to commit issuance: %w", err)
	}
	return ncf, events, nil
}

func (s *sequenceService) IssueNextTx(ctx context.Context, tx pgx.Tx, tenantID int, typeCode string) (string, []Event, error) {
	// Single-statement conditional increment: the WHERE clause refuses
	// exhausted sequences and the SET recomputes the low-capacity flag from
	// the post-issuance consumption. Integer math avoids float drift at the
	// 90% threshold. Column references in SET read the pre-update row, so
	// RETURNING next_number - 1 is the number just issued.
	var (
		seqID       int
		prefix      string
		issued      int64
		rangeStart  int64
		rangeEnd    int64
		lowCapacity bool
	)
	err := tx.QueryRow(ctx, `
		UPDATE fiscal_sequences
		SET next_number = next_number + 1,
		    low_capacity = (next_number + 1 - range_start) * 10 >= (range_end - range_start + 1) * 9
		WHERE tenant_id = $1 AND document_type_code = $2 AND active
		  AND next_number <= range_end
		RETURNING id, number_prefix, next_number - 1, range_start, range_end, low_capacity
	`, tenantID, typeCode).Scan(&seqID, &prefix, &issued, &rangeStart, &rangeEnd, &lowCapacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, s.classifyIssueFailure(ctx, tx, tenantID, typeCode)
		}
		return "", nil, fmt.Errorf("failed to issue fiscal number: %w", err)
	}

	ncf := fmt.Sprintf("%s%0*d", prefix, NCFWidth(typeCode), issued)

	var events []Event
	capacity := rangeEnd - rangeStart + 1
	wasLow := (issued-rangeStart)*10 >= capacity*9
	if lowCapacity && !wasLow {
		events = append(events, SequenceLowCapacity{
			eventMeta:        newEventMeta(),
			TenantID:         tenantID,
			SequenceID:       seqID,
			DocumentTypeCode: typeCode,
			NumberPrefix:     prefix,
			Remaining:        rangeEnd - issued,
		})
	}
	return ncf, events, nil
}

// classifyIssueFailure distinguishes a missing configuration from an
// exhausted range after the conditional update matched no row.
func (s *sequenceService) classifyIssueFailure(ctx context.Context, tx pgx.Tx, tenantID int, typeCode string) error {
	var nextNumber, rangeEnd int64
	err := tx.QueryRow(ctx, `
		SELECT next_number, range_end FROM fiscal_sequences
		WHERE tenant_id = $1 AND document_type_code = $2 AND active
	`, tenantID, typeCode).Scan(&nextNumber, &rangeEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: tenant %d type %s", ErrNoSequenceConfigured, tenantID, typeCode)
		}
		return fmt.Errorf("failed to inspect sequence: %w", err)
	}
	return fmt.Errorf("%w: tenant %d type %s", ErrSequenceExhausted, tenantID, typeCode)
}

func (s *sequenceService) Deactivate(ctx context.Context, sequenceID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE fiscal_sequences SET active = false WHERE id = $1", sequenceID)
	if err != nil {
		return fmt.Errorf("failed to deactivate sequence %d: %w", sequenceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sequence %d not found", sequenceID)
	}
	return nil
}

func (s *sequenceService) GetSequences(ctx context.Context, tenantID int) ([]FiscalSequence, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, document_type_code, number_prefix, range_start, range_end, next_number, active, low_capacity, created_at
		FROM fiscal_sequences
		WHERE tenant_id = $1
		ORDER BY document_type_code, id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequences: %w", err)
	}
	defer rows.Close()

	var seqs []FiscalSequence
	for rows.Next() {
		var seq FiscalSequence
		if err := rows.Scan(
			&seq.ID, &seq.TenantID, &seq.DocumentTypeCode, &seq.NumberPrefix,
			&seq.RangeStart, &seq.RangeEnd, &seq.NextNumber, &seq.Active,
			&seq.LowCapacity, &seq.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sequence: %w", err)
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sequence row iteration error: %w", err)
	}
	return seqs, nil
}
