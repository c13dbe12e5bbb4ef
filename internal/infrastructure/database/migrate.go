package database

import (
	"fmt"

	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted entity in migration order
func Models() []interface{} {
	return []interface{}{
		// Identity
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.Tenant{},
		&entity.TenantMembership{},

		// Catalogue
		&entity.Customer{},
		&entity.InventoryItem{},
		&entity.UnitConversion{},
		&entity.BreakdownHistory{},
		&entity.RestockHistory{},

		// Sales
		&entity.Receipt{},
		&entity.ReceiptDetail{},
		&entity.Debt{},
		&entity.DebtPayment{},

		// System
		&entity.Notification{},
		&entity.IdempotencyKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}
