package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	infraRepo "github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/sangkips/tillbook-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// TenantService handles the current shop, its settings and its workers
type TenantService struct {
	tx         repository.TxManager
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
}

// NewTenantService creates a new tenant service
func NewTenantService(tx repository.TxManager, tenantRepo repository.TenantRepository, userRepo repository.UserRepository) *TenantService {
	return &TenantService{tx: tx, tenantRepo: tenantRepo, userRepo: userRepo}
}

// GetCurrentTenant retrieves the tenant in the context
func (s *TenantService) GetCurrentTenant(ctx context.Context) (*entity.Tenant, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Tenant")
	}
	return tenant, nil
}

// UpdateTenantInput represents input for updating a tenant. Nil fields are left as they are.
type UpdateTenantInput struct {
	Name            *string
	Currency        *string
	Timezone        *string
	Locale          *string
	TaxRate         *decimal.Decimal
	TaxLabel        *string
	ReceiptTemplate *string
	ReceiptFooter   *string
}

// UpdateTenant updates the name and settings of the current tenant
func (s *TenantService) UpdateTenant(ctx context.Context, input *UpdateTenantInput) (*entity.Tenant, error) {
	tenant, err := s.GetCurrentTenant(ctx)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewBadRequestError("Name cannot be empty")
		}
		tenant.Name = name
	}

	settings := &tenant.Settings
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(hundred) {
			return nil, apperror.NewBadRequestError("Tax rate must be between 0 and 100")
		}
		settings.TaxRate = *input.TaxRate
	}
	if input.Currency != nil {
		settings.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.Timezone != nil {
		settings.Timezone = *input.Timezone
	}
	if input.Locale != nil {
		settings.Locale = *input.Locale
	}
	if input.TaxLabel != nil {
		settings.TaxLabel = *input.TaxLabel
	}
	if input.ReceiptTemplate != nil {
		settings.ReceiptTemplate = *input.ReceiptTemplate
	}
	if input.ReceiptFooter != nil {
		settings.ReceiptFooter = *input.ReceiptFooter
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetMembers retrieves all workers of the current tenant
func (s *TenantService) GetMembers(ctx context.Context) ([]entity.TenantMembership, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	members, err := s.tenantRepo.GetMembers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []entity.TenantMembership{}
	}
	return members, nil
}

// AddWorkerInput represents input for adding a worker. An existing account
// with the same email joins the shop; otherwise one is created with Password.
type AddWorkerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Password  string
	Role      string
}

// AddWorker adds a user to the current tenant
func (s *TenantService) AddWorker(ctx context.Context, input *AddWorkerInput) (*entity.TenantMembership, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	// Default role to cashier if not specified
	role := input.Role
	if role == "" {
		role = entity.MembershipCashier
	}
	if !entity.IsValidMembershipRole(role) {
		return nil, apperror.NewBadRequestError("Role must be owner, manager or cashier")
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, apperror.NewBadRequestError("Email is required")
	}

	var membership *entity.TenantMembership
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		if user == nil {
			if strings.TrimSpace(input.FirstName) == "" {
				return apperror.NewBadRequestError("First name is required")
			}
			if len(input.Password) < minPasswordLength {
				return apperror.NewBadRequestError("Password must be at least 8 characters")
			}
			hashedPassword, err := utils.HashPassword(input.Password)
			if err != nil {
				return err
			}
			user = &entity.User{
				FirstName: strings.TrimSpace(input.FirstName),
				LastName:  strings.TrimSpace(input.LastName),
				Email:     email,
				Phone:     trimmed(input.Phone),
				Password:  hashedPassword,
			}
			if err := s.userRepo.Create(ctx, user); err != nil {
				return err
			}
		}

		// Check if user is already a member
		existing, err := s.tenantRepo.GetMembership(ctx, tenantID, user.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewConflictError("User is already a member of this business")
		}

		membership = &entity.TenantMembership{
			TenantID: tenantID,
			UserID:   user.ID,
			Role:     role,
		}
		if err := s.tenantRepo.AddMember(ctx, membership); err != nil {
			return err
		}
		membership.User = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// GetMembership returns the membership of userID in the current tenant
func (s *TenantService) GetMembership(ctx context.Context, userID uuid.UUID) (*entity.TenantMembership, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperror.ErrWorkerNotFound
	}
	return membership, nil
}
