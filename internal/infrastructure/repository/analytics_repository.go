package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/tillbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) SalesBetween(ctx context.Context, start, end time.Time) ([]domainRepo.SaleRecord, error) {
	var results []domainRepo.SaleRecord
	err := conn(ctx, r.db).
		Table("receipts").
		Select("id, total, profit, payment_method, created_at").
		Scopes(TenantScope(ctx)).
		Where("flagged = ? AND created_at >= ? AND created_at < ?", false, start, end).
		Order("created_at ASC").
		Scan(&results).Error
	return results, err
}

func (r *analyticsRepository) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult
	err := conn(ctx, r.db).
		Table("receipt_details").
		Select("receipt_details.name AS name, SUM(receipt_details.quantity) AS quantity, SUM(receipt_details.total_price) AS revenue").
		Joins("JOIN receipts ON receipts.id = receipt_details.receipt_id").
		Scopes(TenantScopeFor(ctx, "receipts")).
		Where("receipts.flagged = ? AND receipts.created_at >= ? AND receipts.created_at < ?", false, start, end).
		Group("receipt_details.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *analyticsRepository) ItemSales(ctx context.Context, inventoryID uuid.UUID, since time.Time) ([]domainRepo.ItemSaleRecord, error) {
	var results []domainRepo.ItemSaleRecord
	err := conn(ctx, r.db).
		Table("receipt_details").
		Select("receipt_details.quantity AS quantity, receipts.created_at AS created_at").
		Joins("JOIN receipts ON receipts.id = receipt_details.receipt_id").
		Scopes(TenantScopeFor(ctx, "receipts")).
		Where("receipt_details.inventory_id = ? AND receipts.flagged = ? AND receipts.created_at >= ?", inventoryID, false, since).
		Order("receipts.created_at ASC").
		Scan(&results).Error
	return results, err
}
