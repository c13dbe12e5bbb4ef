package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tenant is a company that owns customers, inventory and receipts
type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Settings  TenantSettings `gorm:"type:text" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Members []TenantMembership `gorm:"foreignKey:TenantID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new tenant
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// Membership roles. Each names a seeded Role whose permissions the member gets.
const (
	MembershipOwner   = "owner"
	MembershipManager = "manager"
	MembershipCashier = "cashier"
)

// IsValidMembershipRole reports whether role is one of the membership roles
func IsValidMembershipRole(role string) bool {
	switch role {
	case MembershipOwner, MembershipManager, MembershipCashier:
		return true
	}
	return false
}

// TenantMembership links a worker to a tenant
type TenantMembership struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      string    `gorm:"size:50;not null;default:'cashier'" json:"role"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName returns the table name for the TenantMembership model
func (TenantMembership) TableName() string {
	return "tenant_memberships"
}

// TenantSettings holds per-company configuration
type TenantSettings struct {
	Currency        string          `json:"currency,omitempty"`
	Timezone        string          `json:"timezone,omitempty"`
	Locale          string          `json:"locale,omitempty"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxLabel        string          `json:"tax_label,omitempty"`
	ReceiptTemplate string          `json:"receipt_template,omitempty"`
	ReceiptFooter   string          `json:"receipt_footer,omitempty"`
}

// Scan implements the sql.Scanner interface for TenantSettings
func (ts *TenantSettings) Scan(value interface{}) error {
	if value == nil {
		*ts = TenantSettings{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TenantSettings: unsupported type")
	}

	return json.Unmarshal(bytes, ts)
}

// Value implements the driver.Valuer interface for TenantSettings
func (ts TenantSettings) Value() (driver.Value, error) {
	b, err := json.Marshal(ts)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// DefaultTenantSettings returns default settings for new tenants
func DefaultTenantSettings() TenantSettings {
	return TenantSettings{
		Currency:        "KES",
		Timezone:        "Africa/Nairobi",
		Locale:          "en-KE",
		TaxRate:         decimal.NewFromInt(16),
		TaxLabel:        "VAT",
		ReceiptTemplate: "standard",
	}
}
