package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type debtRepository struct {
	db *gorm.DB
}

// NewDebtRepository creates a new debt repository
func NewDebtRepository(db *gorm.DB) domainRepo.DebtRepository {
	return &debtRepository{db: db}
}

func (r *debtRepository) Create(ctx context.Context, debt *entity.Debt) error {
	return conn(ctx, r.db).Create(debt).Error
}

func (r *debtRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Debt, error) {
	var debt entity.Debt
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&debt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &debt, err
}

func (r *debtRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Debt, error) {
	var debt entity.Debt
	err := conn(ctx, r.db).Scopes(TenantScope(ctx), lockForUpdate("debts")).First(&debt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &debt, err
}

func (r *debtRepository) GetByReceiptID(ctx context.Context, receiptID uuid.UUID) (*entity.Debt, error) {
	var debt entity.Debt
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC").
		First(&debt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &debt, err
}

func (r *debtRepository) SetAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal, status enum.DebtStatus) error {
	return conn(ctx, r.db).
		Model(&entity.Debt{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"amount": amount,
			"status": string(status),
		}).Error
}

func (r *debtRepository) Reduce(ctx context.Context, id uuid.UUID, applied, epsilon decimal.Decimal) (bool, error) {
	// SET expressions all read the pre-update row, so status is judged on the new amount.
	// epsilon is bound as a float: SQLite compares an untyped expression with a text
	// parameter as text. The guard allows epsilon of drift on SQLite's float storage.
	result := conn(ctx, r.db).
		Model(&entity.Debt{}).
		Scopes(TenantScope(ctx)).
		Where("id = ? AND amount - ? > ?", id, applied, -epsilon.InexactFloat64()).
		Updates(map[string]interface{}{
			"amount": gorm.Expr("amount - ?", applied),
			"status": gorm.Expr("CASE WHEN ABS(amount - ?) < ? THEN ? ELSE ? END",
				applied, epsilon.InexactFloat64(), string(enum.DebtStatusPaid), string(enum.DebtStatusPending)),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *debtRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.Debt{}, "id = ?", id).Error
}

func (r *debtRepository) DeleteByReceiptID(ctx context.Context, receiptID uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.Debt{}, "receipt_id = ?", receiptID).Error
}

// unflagged keeps debts whose receipt is not flagged; debts without a receipt are kept
func unflagged(db *gorm.DB) *gorm.DB {
	return db.
		Joins("LEFT JOIN receipts ON receipts.id = debts.receipt_id").
		Where("(receipts.id IS NULL OR receipts.flagged = ?)", false)
}

func (r *debtRepository) FindUnpaidBefore(ctx context.Context, customerID uuid.UUID, before time.Time, threshold decimal.Decimal) (*entity.Debt, error) {
	var debt entity.Debt
	err := conn(ctx, r.db).
		Model(&entity.Debt{}).
		Scopes(TenantScopeFor(ctx, "debts"), unflagged).
		Where("debts.customer_id = ? AND debts.amount >= ? AND debts.created_at < ?", customerID, threshold, before).
		Order("debts.created_at ASC").
		First(&debt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &debt, err
}

func (r *debtRepository) ListOpenForCustomer(ctx context.Context, customerID, excludeID uuid.UUID) ([]entity.Debt, error) {
	var debts []entity.Debt
	err := conn(ctx, r.db).
		Model(&entity.Debt{}).
		Scopes(TenantScopeFor(ctx, "debts"), unflagged, lockForUpdate("debts")).
		Where("debts.customer_id = ? AND debts.id <> ? AND debts.amount > ?", customerID, excludeID, 0).
		Order("debts.created_at ASC").
		Find(&debts).Error
	return debts, err
}

type debtViewRow struct {
	ID              uuid.UUID
	ReceiptID       *uuid.UUID
	WorkerFirstName string
	WorkerLastName  string
	CustomerName    string
	CustomerCompany string
	Contact         *string
	Amount          decimal.Decimal
	Balance         decimal.NullDecimal
	CreatedAt       time.Time
}

func (r *debtRepository) ListUnpaid(ctx context.Context, filter domainRepo.DebtFilter) ([]domainRepo.DebtView, error) {
	query := conn(ctx, r.db).
		Table("debts").
		Select(`debts.id, debts.receipt_id, debts.amount, debts.created_at,
			COALESCE(users.first_name, '') AS worker_first_name, COALESCE(users.last_name, '') AS worker_last_name,
			COALESCE(customers.name, '') AS customer_name, COALESCE(customers.company, '') AS customer_company,
			customers.contact AS contact, receipts.balance AS balance`).
		Joins("LEFT JOIN users ON users.id = debts.worker_id").
		Joins("LEFT JOIN customers ON customers.id = debts.customer_id").
		Scopes(TenantScopeFor(ctx, "debts"), unflagged).
		Where("debts.amount >= ?", filter.Threshold)

	if filter.From != nil {
		query = query.Where("debts.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("debts.created_at < ?", *filter.To)
	}

	var rows []debtViewRow
	if err := query.Order("debts.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]domainRepo.DebtView, len(rows))
	for i, row := range rows {
		views[i] = domainRepo.DebtView{
			ID:              row.ID,
			ReceiptID:       row.ReceiptID,
			WorkerFirstName: row.WorkerFirstName,
			WorkerLastName:  row.WorkerLastName,
			CustomerName:    row.CustomerName,
			CustomerCompany: row.CustomerCompany,
			Contact:         row.Contact,
			Amount:          row.Amount,
			Balance:         row.Balance.Decimal,
			CreatedAt:       row.CreatedAt,
		}
	}
	return views, nil
}

func (r *debtRepository) CreatePayment(ctx context.Context, payment *entity.DebtPayment) error {
	return conn(ctx, r.db).Create(payment).Error
}

func (r *debtRepository) ListPayments(ctx context.Context, debtID uuid.UUID) ([]entity.DebtPayment, error) {
	var payments []entity.DebtPayment
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Where("debt_id = ?", debtID).
		Order("date ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}
