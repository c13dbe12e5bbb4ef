package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReceiptRepository defines the interface for receipt operations
type ReceiptRepository interface {
	// Create inserts the receipt header only
	Create(ctx context.Context, receipt *entity.Receipt) error
	CreateDetails(ctx context.Context, details []entity.ReceiptDetail) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	// GetWithDetails loads the receipt with customer, worker and lines
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	ListDetails(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptDetail, error)
	DeleteDetails(ctx context.Context, receiptID uuid.UUID) error

	// UpdateTotals writes the header fields when the stored version still
	// equals receipt.Version, then bumps the version. Returns false on a stale version.
	UpdateTotals(ctx context.Context, receipt *entity.Receipt) (bool, error)
	SetFlagged(ctx context.Context, id uuid.UUID, flagged bool) error
	SetDebt(ctx context.Context, id uuid.UUID, debtID *uuid.UUID) error
	// ApplyPayment moves amount from balance to amount_paid as a relative update
	ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	// Delete removes the receipt row and reports the number of rows removed
	Delete(ctx context.Context, id uuid.UUID) (int64, error)

	// ListBetween returns receipts created in [start, end) with customer, worker and lines, newest first
	ListBetween(ctx context.Context, start, end time.Time) ([]entity.Receipt, error)
}
