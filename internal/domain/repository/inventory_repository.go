package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// InventoryRepository defines the interface for inventory item operations.
// Onhand is never written by Update; it only moves through AdjustOnhand.
type InventoryRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.InventoryItem, error)
	// GetByName matches the trimmed name case-insensitively
	GetByName(ctx context.Context, name string) (*entity.InventoryItem, error)
	NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	// Update writes descriptive fields only
	Update(ctx context.Context, item *entity.InventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.InventoryItem, int64, error)

	// AdjustOnhand applies onhand = onhand + delta as one relative update and
	// returns the row as it stands afterwards. Returns nil when the item does not exist.
	AdjustOnhand(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*entity.InventoryItem, error)
	// SetPrices overwrites cost and sales price
	SetPrices(ctx context.Context, id uuid.UUID, cost, sales decimal.Decimal) error
	SetReorderPoint(ctx context.Context, id uuid.UUID, point decimal.Decimal) error
	TouchBreakdown(ctx context.Context, id uuid.UUID, at time.Time) error
}

// UnitConversionRepository defines the interface for unit conversion operations
type UnitConversionRepository interface {
	// Get returns the conversion of an item to toUnit; toUnit matches case-sensitively
	Get(ctx context.Context, inventoryID uuid.UUID, toUnit string) (*entity.UnitConversion, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.UnitConversion, error)
	ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]entity.UnitConversion, error)
	// Save inserts the conversion or replaces the existing one for (inventoryID, toUnit)
	Save(ctx context.Context, conversion *entity.UnitConversion) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByInventory(ctx context.Context, inventoryID uuid.UUID) error
}

// InventoryHistoryRepository stores breakdown and restock history
type InventoryHistoryRepository interface {
	CreateBreakdown(ctx context.Context, h *entity.BreakdownHistory) error
	ListBreakdowns(ctx context.Context, inventoryID uuid.UUID, limit int) ([]entity.BreakdownHistory, error)
	CreateRestock(ctx context.Context, h *entity.RestockHistory) error
	ListRestocks(ctx context.Context, inventoryID uuid.UUID, limit int) ([]entity.RestockHistory, error)
}
