package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt is a completed sale.
// Balance always equals Total - AmountPaid - Discount.
type Receipt struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CustomerID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	WorkerID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"worker_id"`
	Total         decimal.Decimal    `gorm:"type:decimal(20,4);not null;default:0" json:"total"`
	Discount      decimal.Decimal    `gorm:"type:decimal(20,4);not null;default:0" json:"discount"`
	AmountPaid    decimal.Decimal    `gorm:"type:decimal(20,4);not null;default:0" json:"amount_paid"`
	Balance       decimal.Decimal    `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	Profit        decimal.Decimal    `gorm:"type:decimal(20,4);not null;default:0" json:"profit"`
	Flagged       bool               `gorm:"not null;default:false" json:"flagged"`
	DebtID        *uuid.UUID         `gorm:"type:uuid;index" json:"debt_id,omitempty"`
	PaymentMethod enum.PaymentMethod `gorm:"size:30;not null;default:'cash'" json:"payment_method"`
	Version       int64              `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	Customer *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Worker   *User           `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Details  []ReceiptDetail `gorm:"foreignKey:ReceiptID" json:"details,omitempty"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}

// ComputeBalance returns Total - AmountPaid - Discount
func (r *Receipt) ComputeBalance() decimal.Decimal {
	return r.Total.Sub(r.AmountPaid).Sub(r.Discount)
}

// ReceiptDetail is one line of a receipt. Quantity is in base units;
// OriginalUnit and OriginalQuantity keep what the cashier typed.
type ReceiptDetail struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"receipt_id"`
	InventoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_id"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Quantity         decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity"`
	AtomicQuantity   decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"atomic_quantity"`
	CostPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost_price"`
	SalesPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sales_price"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	ConversionRate   decimal.Decimal `gorm:"type:decimal(20,6);not null;default:1" json:"conversion_rate"`
	OriginalUnit     string          `gorm:"size:50" json:"original_unit"`
	OriginalQuantity decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"original_quantity"`
	Loss             decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"loss"`
	CreatedAt        time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new detail
func (d *ReceiptDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptDetail model
func (ReceiptDetail) TableName() string {
	return "receipt_details"
}

// Rate returns the stored conversion rate, treating zero as 1
func (d *ReceiptDetail) Rate() decimal.Decimal {
	if d.ConversionRate.IsZero() {
		return decimal.NewFromInt(1)
	}
	return d.ConversionRate
}
