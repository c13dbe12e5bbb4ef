package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NoUnit is the sentinel a sale line uses to sell in the base unit
const NoUnit = "none"

// InventoryItem is a stocked product. Quantities are held in the base unit;
// ConversionFactor converts one base unit into atomic units.
type InventoryItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	BaseUnit          string          `gorm:"size:50;not null" json:"base_unit"`
	AtomicUnit        string          `gorm:"size:50" json:"atomic_unit"`
	ConversionFactor  decimal.Decimal `gorm:"type:decimal(20,6);not null;default:1" json:"conversion_factor"`
	LossFactor        decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"loss_factor"`
	Onhand            decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"onhand"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"cost_price"`
	SalesPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"sales_price"`
	ReorderPoint      decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"reorder_point"`
	LastBreakdownDate *time.Time      `json:"last_breakdown_date,omitempty"`
	Version           int64           `gorm:"not null;default:1" json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Conversions []UnitConversion `gorm:"foreignKey:InventoryID" json:"conversions,omitempty"`
}

// BeforeCreate generates a UUID before creating a new item
func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InventoryItem model
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// IsBaseUnit reports whether a sale in unit needs no conversion
func (i *InventoryItem) IsBaseUnit(unit string) bool {
	unit = strings.TrimSpace(unit)
	return unit == "" || unit == NoUnit || unit == i.BaseUnit
}

// UnitConversion maps one base unit to ConversionRate units of ToUnit.
// A non-zero SalesPrice is the price of one ToUnit.
type UnitConversion struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InventoryID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_conversion_target" json:"inventory_id"`
	FromUnit       string          `gorm:"size:50;not null" json:"from_unit"`
	ToUnit         string          `gorm:"size:50;not null;uniqueIndex:idx_conversion_target" json:"to_unit"`
	ConversionRate decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"conversion_rate"`
	SalesPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"sales_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new conversion
func (c *UnitConversion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the UnitConversion model
func (UnitConversion) TableName() string {
	return "unit_conversions"
}

// BreakdownHistory records every sale that was expressed in a converted unit
type BreakdownHistory struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	InventoryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_id"`
	FromUnit    string          `gorm:"size:50;not null" json:"from_unit"`
	ToUnit      string          `gorm:"size:50;not null" json:"to_unit"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity"`
	BaseUnits   decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"base_units"`
	Loss        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"loss"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a history row
func (b *BreakdownHistory) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BreakdownHistory model
func (BreakdownHistory) TableName() string {
	return "breakdown_histories"
}

// RestockHistory records every stock receipt with the prices it set
type RestockHistory struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	InventoryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_id"`
	WorkerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"worker_id"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost_price"`
	SalesPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sales_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a history row
func (r *RestockHistory) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RestockHistory model
func (RestockHistory) TableName() string {
	return "restock_histories"
}
