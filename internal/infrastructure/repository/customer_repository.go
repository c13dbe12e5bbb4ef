package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/sangkips/tillbook-api/pkg/pagination"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return conn(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) FindByRef(ctx context.Context, ref entity.CustomerRef) (*entity.Customer, error) {
	ref = ref.Normalize()
	var customer entity.Customer
	err := conn(ctx, r.db).
		Scopes(TenantScope(ctx)).
		Where("LOWER(TRIM(company)) = ? AND LOWER(TRIM(name)) = ?",
			strings.ToLower(ref.Company), strings.ToLower(ref.Name)).
		Order("created_at ASC").
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return conn(ctx, r.db).
		Model(&entity.Customer{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", customer.ID).
		Updates(map[string]interface{}{
			"company": customer.Company,
			"name":    customer.Name,
			"contact": customer.Contact,
			"email":   customer.Email,
			"address": customer.Address,
		}).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.Customer{}, "id = ?", id).Error
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := conn(ctx, r.db).Model(&entity.Customer{}).Scopes(TenantScope(ctx))

	if search != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ? OR contact LIKE ?",
			like, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("company ASC, name ASC").
		Find(&customers).Error

	return customers, total, err
}
