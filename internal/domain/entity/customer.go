package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a buyer identified by the pair (company, name) inside a tenant
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_customer_identity" json:"tenant_id"`
	Company   string         `gorm:"size:255;index:idx_customer_identity" json:"company"`
	Name      string         `gorm:"size:255;not null;index:idx_customer_identity" json:"name"`
	Contact   *string        `gorm:"size:50" json:"contact,omitempty"`
	Email     *string        `gorm:"size:255" json:"email,omitempty"`
	Address   *string        `gorm:"type:text" json:"address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// DisplayName renders the customer the way receipts show it: "Company - Name"
func (c *Customer) DisplayName() string {
	if c.Company == "" {
		return c.Name
	}
	return c.Company + " - " + c.Name
}

// CustomerRef identifies a customer by company and name
type CustomerRef struct {
	Company string `json:"company"`
	Name    string `json:"name"`
}

// ParseCustomerName splits "Company - Name" on the first separator.
// Input without a separator is a bare name with no company.
func ParseCustomerName(raw string) CustomerRef {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, " - "); i >= 0 {
		return CustomerRef{
			Company: strings.TrimSpace(raw[:i]),
			Name:    strings.TrimSpace(raw[i+3:]),
		}
	}
	return CustomerRef{Name: raw}
}

// Normalize trims both parts of the reference
func (r CustomerRef) Normalize() CustomerRef {
	return CustomerRef{
		Company: strings.TrimSpace(r.Company),
		Name:    strings.TrimSpace(r.Name),
	}
}

func (r CustomerRef) String() string {
	if r.Company == "" {
		return r.Name
	}
	return r.Company + " - " + r.Name
}
