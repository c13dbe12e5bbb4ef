package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/pkg/pagination"
)

// CustomerRepository defines the interface for customer data operations.
// All methods are scoped to the tenant in the context.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	// FindByRef matches company and name case-insensitively after trimming
	FindByRef(ctx context.Context, ref entity.CustomerRef) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
}
