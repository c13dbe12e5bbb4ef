package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Debt is the outstanding amount of a sale. Amount only decreases.
type Debt struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	WorkerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"worker_id"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	ReceiptID  *uuid.UUID      `gorm:"type:uuid;index" json:"receipt_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Status     enum.DebtStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new debt
func (d *Debt) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Debt model
func (Debt) TableName() string {
	return "debts"
}

// DebtPayment is an append-only audit row. AmountPaid is what was tendered,
// AppliedAmount is what this row settled on DebtID. Sweep rows carry the
// debt whose payment overflowed in SourceDebtID.
type DebtPayment struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	DebtID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"debt_id"`
	SourceDebtID  *uuid.UUID         `gorm:"type:uuid;index" json:"source_debt_id,omitempty"`
	WorkerID      uuid.UUID          `gorm:"type:uuid;not null" json:"worker_id"`
	Date          time.Time          `gorm:"not null;index" json:"date"`
	AmountPaid    decimal.Decimal    `gorm:"type:decimal(20,4);not null" json:"amount_paid"`
	AppliedAmount decimal.Decimal    `gorm:"type:decimal(20,4);not null" json:"applied_amount"`
	PaymentMethod enum.PaymentMethod `gorm:"size:30;not null;default:'cash'" json:"payment_method"`
	CreatedAt     time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment row
func (p *DebtPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DebtPayment model
func (DebtPayment) TableName() string {
	return "debt_payments"
}
