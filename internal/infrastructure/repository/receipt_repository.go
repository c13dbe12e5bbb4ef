package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return conn(ctx, r.db).Omit("Customer", "Worker", "Details").Create(receipt).Error
}

func (r *receiptRepository) CreateDetails(ctx context.Context, details []entity.ReceiptDetail) error {
	if len(details) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&details).Error
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Preload("Customer").
		Preload("Worker").
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("receipt_details.created_at ASC, receipt_details.name ASC")
		}).
		First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) ListDetails(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptDetail, error) {
	var details []entity.ReceiptDetail
	err := conn(ctx, r.db).
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC, name ASC").
		Find(&details).Error
	return details, err
}

func (r *receiptRepository) DeleteDetails(ctx context.Context, receiptID uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.ReceiptDetail{}, "receipt_id = ?", receiptID).Error
}

func (r *receiptRepository) UpdateTotals(ctx context.Context, receipt *entity.Receipt) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.Receipt{}).
		Scopes(TenantScope(ctx)).
		Where("id = ? AND version = ?", receipt.ID, receipt.Version).
		Updates(map[string]interface{}{
			"customer_id":    receipt.CustomerID,
			"total":          receipt.Total,
			"discount":       receipt.Discount,
			"amount_paid":    receipt.AmountPaid,
			"balance":        receipt.Balance,
			"profit":         receipt.Profit,
			"payment_method": string(receipt.PaymentMethod),
			"debt_id":        receipt.DebtID,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	receipt.Version++
	return true, nil
}

func (r *receiptRepository) SetFlagged(ctx context.Context, id uuid.UUID, flagged bool) error {
	return conn(ctx, r.db).
		Model(&entity.Receipt{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"flagged": flagged,
			"version": gorm.Expr("version + 1"),
		}).Error
}

func (r *receiptRepository) SetDebt(ctx context.Context, id uuid.UUID, debtID *uuid.UUID) error {
	return conn(ctx, r.db).
		Model(&entity.Receipt{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Update("debt_id", debtID).Error
}

func (r *receiptRepository) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return conn(ctx, r.db).
		Model(&entity.Receipt{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"balance":     gorm.Expr("balance - ?", amount),
			"amount_paid": gorm.Expr("amount_paid + ?", amount),
			"version":     gorm.Expr("version + 1"),
		}).Error
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.Receipt{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *receiptRepository) ListBetween(ctx context.Context, start, end time.Time) ([]entity.Receipt, error) {
	var receipts []entity.Receipt
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Preload("Customer").
		Preload("Worker").
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("receipt_details.created_at ASC, receipt_details.name ASC")
		}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at DESC").
		Find(&receipts).Error
	return receipts, err
}
