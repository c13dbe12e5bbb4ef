package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Notification is a stock advisory raised by the inventory ledger
type Notification struct {
	ID          uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID             `gorm:"type:uuid;not null;index" json:"tenant_id"`
	InventoryID uuid.UUID             `gorm:"type:uuid;not null;index" json:"inventory_id"`
	Type        enum.NotificationType `gorm:"size:30;not null" json:"type"`
	Message     string                `gorm:"type:text;not null" json:"message"`
	Read        bool                  `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time             `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new notification
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
