package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// DebtFilter selects outstanding debts
type DebtFilter struct {
	// From and To bound created_at as [From, To); nil means unbounded
	From *time.Time
	To   *time.Time
	// Threshold is the smallest amount that counts as unpaid
	Threshold decimal.Decimal
}

// DebtView is a debt joined with its customer, worker and receipt
type DebtView struct {
	ID              uuid.UUID
	ReceiptID       *uuid.UUID
	WorkerFirstName string
	WorkerLastName  string
	CustomerName    string
	CustomerCompany string
	Contact         *string
	Amount          decimal.Decimal
	Balance         decimal.Decimal
	CreatedAt       time.Time
}

// DebtRepository defines the interface for debt and debt payment operations
type DebtRepository interface {
	Create(ctx context.Context, debt *entity.Debt) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Debt, error)
	// GetByIDForUpdate is GetByID holding a row lock until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Debt, error)
	GetByReceiptID(ctx context.Context, receiptID uuid.UUID) (*entity.Debt, error)
	// SetAmount overwrites the remaining amount and status
	SetAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal, status enum.DebtStatus) error
	// Reduce applies amount = amount - applied as a relative update and marks the
	// debt paid when the remainder falls under epsilon. It reports false, changing
	// nothing, when the debt no longer holds applied (within epsilon).
	Reduce(ctx context.Context, id uuid.UUID, applied, epsilon decimal.Decimal) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByReceiptID(ctx context.Context, receiptID uuid.UUID) error

	// FindUnpaidBefore returns the oldest debt of the customer with amount >= threshold,
	// created before the given instant, whose receipt is not flagged
	FindUnpaidBefore(ctx context.Context, customerID uuid.UUID, before time.Time, threshold decimal.Decimal) (*entity.Debt, error)
	// ListOpenForCustomer returns the customer's debts with amount > 0 whose receipt is
	// not flagged, oldest first, excluding excludeID. The rows stay locked until the
	// transaction ends.
	ListOpenForCustomer(ctx context.Context, customerID, excludeID uuid.UUID) ([]entity.Debt, error)
	// ListUnpaid returns unflagged debts matching the filter, newest first
	ListUnpaid(ctx context.Context, filter DebtFilter) ([]DebtView, error)

	CreatePayment(ctx context.Context, payment *entity.DebtPayment) error
	ListPayments(ctx context.Context, debtID uuid.UUID) ([]entity.DebtPayment, error)
}
