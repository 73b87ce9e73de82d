package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"itemize/internal/domain"
	"itemize/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, rec *domain.InvoiceRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO invoices (
		id, source, supplier_name, strategy,
		line_items, metadata, line_count, escalated_lines, created_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9
	)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Source, rec.SupplierName, rec.Strategy,
		rec.LineItems, rec.Metadata, rec.LineCount, rec.EscalatedLines, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceRecord, error) {
	var rec domain.InvoiceRecord
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *invoiceRepo) List(ctx context.Context, offset, limit int) ([]domain.InvoiceRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices"); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var recs []domain.InvoiceRecord
	err := r.db.SelectContext(ctx, &recs,
		"SELECT * FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return recs, total, nil
}

func (r *invoiceRepo) ListEscalated(ctx context.Context, offset, limit int) ([]domain.InvoiceRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices WHERE escalated_lines > 0"); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListEscalated count: %w", err)
	}

	var recs []domain.InvoiceRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM invoices WHERE escalated_lines > 0
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListEscalated: %w", err)
	}
	return recs, total, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
