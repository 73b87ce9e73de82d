package port

import (
	"context"

	"github.com/google/uuid"

	"itemize/internal/domain"
)

// InvoiceRepository defines the contract for invoice result persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, rec *domain.InvoiceRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.InvoiceRecord, int, error)
	ListEscalated(ctx context.Context, offset, limit int) ([]domain.InvoiceRecord, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
