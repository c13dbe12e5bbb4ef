package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ctxKey string

const (
	// TenantIDKey is the context key for tenant ID
	TenantIDKey ctxKey = "tenant_id"
)

// TenantScope returns a GORM scope that filters by tenant.
// It must be applied to every query on a tenant-owned table.
func TenantScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return tenantScope(ctx, "tenant_id")
}

// TenantScopeFor is TenantScope for joined queries, qualifying the column with table
func TenantScopeFor(ctx context.Context, table string) func(db *gorm.DB) *gorm.DB {
	return tenantScope(ctx, table+".tenant_id")
}

func tenantScope(ctx context.Context, column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		tenantID, ok := GetTenantID(ctx)
		if !ok {
			// No tenant in context: match nothing rather than leak other tenants' rows
			return db.Where("1 = 0")
		}
		return db.Where(column+" = ?", tenantID)
	}
}

// lockForUpdate row-locks the selected rows of table until the transaction ends.
// SQLite has no row locks and serializes writers instead, so it is skipped there.
func lockForUpdate(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector.Name() == "sqlite" {
			return db
		}
		return db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: table}})
	}
}

// WithTenant adds tenant ID to context
func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok && tenantID != uuid.Nil
}
