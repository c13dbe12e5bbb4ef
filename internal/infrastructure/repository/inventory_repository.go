package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/sangkips/tillbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) domainRepo.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	return conn(ctx, r.db).Omit("Conversions").Create(item).Error
}

func (r *inventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Preload("Conversions").
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *inventoryRepository) GetByName(ctx context.Context, name string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Where("LOWER(TRIM(name)) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *inventoryRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := conn(ctx, r.db).
		Model(&entity.InventoryItem{}).
		Scopes(TenantScope(ctx)).
		Where("LOWER(TRIM(name)) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *inventoryRepository) Update(ctx context.Context, item *entity.InventoryItem) error {
	return conn(ctx, r.db).
		Model(&entity.InventoryItem{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":              item.Name,
			"base_unit":         item.BaseUnit,
			"atomic_unit":       item.AtomicUnit,
			"conversion_factor": item.ConversionFactor,
			"loss_factor":       item.LossFactor,
			"cost_price":        item.CostPrice,
			"sales_price":       item.SalesPrice,
			"reorder_point":     item.ReorderPoint,
			"version":           gorm.Expr("version + 1"),
		}).Error
}

func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.InventoryItem{}, "id = ?", id).Error
}

func (r *inventoryRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.InventoryItem, int64, error) {
	var items []entity.InventoryItem
	var total int64

	query := conn(ctx, r.db).Model(&entity.InventoryItem{}).Scopes(TenantScope(ctx))
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(search))+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Conversions").
		Order("name ASC").
		Find(&items).Error

	return items, total, err
}

func (r *inventoryRepository) AdjustOnhand(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*entity.InventoryItem, error) {
	db := conn(ctx, r.db)
	result := db.Model(&entity.InventoryItem{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"onhand":  gorm.Expr("onhand + ?", delta),
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var item entity.InventoryItem
	if err := db.Scopes(TenantScope(ctx)).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) SetPrices(ctx context.Context, id uuid.UUID, cost, sales decimal.Decimal) error {
	return conn(ctx, r.db).
		Model(&entity.InventoryItem{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cost_price":  cost,
			"sales_price": sales,
		}).Error
}

func (r *inventoryRepository) SetReorderPoint(ctx context.Context, id uuid.UUID, point decimal.Decimal) error {
	return conn(ctx, r.db).
		Model(&entity.InventoryItem{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Update("reorder_point", point).Error
}

func (r *inventoryRepository) TouchBreakdown(ctx context.Context, id uuid.UUID, at time.Time) error {
	return conn(ctx, r.db).
		Model(&entity.InventoryItem{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Update("last_breakdown_date", at).Error
}

type unitConversionRepository struct {
	db *gorm.DB
}

// NewUnitConversionRepository creates a new unit conversion repository.
// Conversions carry no tenant column; callers resolve the owning item first.
func NewUnitConversionRepository(db *gorm.DB) domainRepo.UnitConversionRepository {
	return &unitConversionRepository{db: db}
}

func (r *unitConversionRepository) Get(ctx context.Context, inventoryID uuid.UUID, toUnit string) (*entity.UnitConversion, error) {
	var conversion entity.UnitConversion
	err := conn(ctx, r.db).
		Where("inventory_id = ? AND to_unit = ?", inventoryID, toUnit).
		First(&conversion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &conversion, err
}

func (r *unitConversionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.UnitConversion, error) {
	var conversion entity.UnitConversion
	err := conn(ctx, r.db).First(&conversion, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &conversion, err
}

func (r *unitConversionRepository) ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]entity.UnitConversion, error) {
	var conversions []entity.UnitConversion
	err := conn(ctx, r.db).
		Where("inventory_id = ?", inventoryID).
		Order("to_unit ASC").
		Find(&conversions).Error
	return conversions, err
}

func (r *unitConversionRepository) Save(ctx context.Context, conversion *entity.UnitConversion) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "inventory_id"}, {Name: "to_unit"}},
		DoUpdates: clause.AssignmentColumns([]string{"from_unit", "conversion_rate", "sales_price", "updated_at"}),
	}).Create(conversion).Error
}

func (r *unitConversionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.UnitConversion{}, "id = ?", id).Error
}

func (r *unitConversionRepository) DeleteByInventory(ctx context.Context, inventoryID uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.UnitConversion{}, "inventory_id = ?", inventoryID).Error
}

type inventoryHistoryRepository struct {
	db *gorm.DB
}

// NewInventoryHistoryRepository creates a new breakdown and restock history repository
func NewInventoryHistoryRepository(db *gorm.DB) domainRepo.InventoryHistoryRepository {
	return &inventoryHistoryRepository{db: db}
}

func (r *inventoryHistoryRepository) CreateBreakdown(ctx context.Context, h *entity.BreakdownHistory) error {
	return conn(ctx, r.db).Create(h).Error
}

func (r *inventoryHistoryRepository) ListBreakdowns(ctx context.Context, inventoryID uuid.UUID, limit int) ([]entity.BreakdownHistory, error) {
	var rows []entity.BreakdownHistory
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *inventoryHistoryRepository) CreateRestock(ctx context.Context, h *entity.RestockHistory) error {
	return conn(ctx, r.db).Create(h).Error
}

func (r *inventoryHistoryRepository) ListRestocks(ctx context.Context, inventoryID uuid.UUID, limit int) ([]entity.RestockHistory, error) {
	var rows []entity.RestockHistory
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
