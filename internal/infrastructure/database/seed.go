package database

import (
	"errors"
	"fmt"

	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Permission names checked by the HTTP layer
const (
	PermManageReceipts  = "manage-receipts"
	PermFlagReceipts    = "flag-receipts"
	PermDeleteReceipts  = "delete-receipts"
	PermManageDebts     = "manage-debts"
	PermManageInventory = "manage-inventory"
	PermManageCustomers = "manage-customers"
	PermManageWorkers   = "manage-workers"
	PermManageSettings  = "manage-settings"
	PermViewReports     = "view-reports"
)

// Role names
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

var rolePermissions = map[string][]string{
	RoleOwner: {
		PermManageReceipts, PermFlagReceipts, PermDeleteReceipts, PermManageDebts,
		PermManageInventory, PermManageCustomers, PermManageWorkers, PermManageSettings,
		PermViewReports,
	},
	RoleManager: {
		PermManageReceipts, PermFlagReceipts, PermManageDebts, PermManageInventory,
		PermManageCustomers, PermViewReports,
	},
	RoleCashier: {
		PermManageReceipts, PermManageDebts, PermManageCustomers,
	},
}

// SeedDefaultData creates the default permissions and roles. Safe to run repeatedly.
func SeedDefaultData(db *gorm.DB, log *zap.Logger) error {
	log.Info("seeding default roles and permissions")

	byName := make(map[string]entity.Permission)
	for _, names := range rolePermissions {
		for _, name := range names {
			if _, ok := byName[name]; ok {
				continue
			}
			perm, err := firstOrCreatePermission(db, name)
			if err != nil {
				return err
			}
			byName[name] = perm
		}
	}

	for roleName, names := range rolePermissions {
		var role entity.Role
		err := db.Where("name = ?", roleName).First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up role %s: %w", roleName, err)
		}

		perms := make([]entity.Permission, 0, len(names))
		for _, name := range names {
			perms = append(perms, byName[name])
		}
		role = entity.Role{Name: roleName, GuardName: "web", Permissions: perms}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to create role %s: %w", roleName, err)
		}
	}

	log.Info("default data seeding completed")
	return nil
}

func firstOrCreatePermission(db *gorm.DB, name string) (entity.Permission, error) {
	var perm entity.Permission
	err := db.Where("name = ?", name).First(&perm).Error
	if err == nil {
		return perm, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return perm, fmt.Errorf("failed to look up permission %s: %w", name, err)
	}
	perm = entity.Permission{Name: name, GuardName: "web"}
	if err := db.Create(&perm).Error; err != nil {
		return perm, fmt.Errorf("failed to create permission %s: %w", name, err)
	}
	return perm, nil
}
