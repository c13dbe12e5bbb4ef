package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	infraRepo "github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/sangkips/tillbook-api/pkg/pagination"
)

// CustomerService handles customer-related operations. Receipts only look
// customers up; this is the one place they are created.
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Company string
	Name    string
	Contact *string
	Email   *string
	Address *string
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	// Extract tenant ID from context
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	ref := entity.CustomerRef{Company: input.Company, Name: input.Name}.Normalize()
	if ref.Name == "" {
		return nil, apperror.NewBadRequestError("Customer name is required")
	}
	if err := s.ensureUnique(ctx, ref, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		TenantID: tenantID,
		Company:  ref.Company,
		Name:     ref.Name,
		Contact:  trimmed(input.Contact),
		Email:    trimmed(input.Email),
		Address:  trimmed(input.Address),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.ErrCustomerNotFound
	}
	return customer, nil
}

// ListCustomers lists customers whose company or name matches search
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID      uuid.UUID
	Company *string
	Name    *string
	Contact *string
	Email   *string
	Address *string
}

// UpdateCustomer updates a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	ref := entity.CustomerRef{Company: customer.Company, Name: customer.Name}
	if input.Company != nil {
		ref.Company = *input.Company
	}
	if input.Name != nil {
		ref.Name = *input.Name
	}
	ref = ref.Normalize()
	if ref.Name == "" {
		return nil, apperror.NewBadRequestError("Customer name is required")
	}
	if err := s.ensureUnique(ctx, ref, customer.ID); err != nil {
		return nil, err
	}
	customer.Company, customer.Name = ref.Company, ref.Name

	if input.Contact != nil {
		customer.Contact = trimmed(input.Contact)
	}
	if input.Email != nil {
		customer.Email = trimmed(input.Email)
	}
	if input.Address != nil {
		customer.Address = trimmed(input.Address)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// ensureUnique rejects a (company, name) pair already used by another customer
func (s *CustomerService) ensureUnique(ctx context.Context, ref entity.CustomerRef, selfID uuid.UUID) error {
	existing, err := s.customerRepo.FindByRef(ctx, ref)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperror.NewConflictError("Customer " + ref.String() + " already exists")
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
