package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/sangkips/tillbook-api/pkg/utils"
)

const minPasswordLength = 8

// AuthService handles authentication-related operations
type AuthService struct {
	tx         repository.TxManager
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	tenantRepo repository.TenantRepository
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(
	tx repository.TxManager,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tenantRepo repository.TenantRepository,
	jwtManager *utils.JWTManager,
) *AuthService {
	return &AuthService{
		tx:         tx,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		tenantRepo: tenantRepo,
		jwtManager: jwtManager,
	}
}

// LoginInput represents the login input. TenantID picks the shop to sign
// into when the user belongs to several; zero picks the first.
type LoginInput struct {
	Email    string
	Password string
	TenantID uuid.UUID
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	Tenant       *entity.Tenant
	Role         string
	Permissions  []string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(ctx, user, input.TenantID)
}

// RegisterInput represents the registration input. Registering opens a new
// shop owned by the user.
type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	Password     string
	BusinessName string
}

// Register creates a user together with their shop and signs them in
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginOutput, error) {
	email := normalizeEmail(input.Email)
	if email == "" || strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.BusinessName) == "" {
		return nil, apperror.NewBadRequestError("First name, email and business name are required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.NewBadRequestError("Password must be at least 8 characters")
	}

	var user *entity.User
	var tenant *entity.Tenant
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Check if email already exists
		existingUser, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existingUser != nil {
			return apperror.NewConflictError("Email already registered")
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

		tenant, err = s.createTenant(ctx, input.BusinessName, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, user, tenant.ID)
}

func (s *AuthService) createTenant(ctx context.Context, name string, ownerID uuid.UUID) (*entity.Tenant, error) {
	slug := utils.Slugify(name)
	taken, err := s.tenantRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken || slug == "" {
		slug = utils.UniqueSlug(name)
	}

	tenant := &entity.Tenant{
		Name:     strings.TrimSpace(name),
		Slug:     slug,
		OwnerID:  ownerID,
		Settings: entity.DefaultTenantSettings(),
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	if err := s.tenantRepo.AddMember(ctx, &entity.TenantMembership{
		TenantID: tenant.ID,
		UserID:   ownerID,
		Role:     entity.MembershipOwner,
	}); err != nil {
		return nil, err
	}
	return tenant, nil
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string, tenantID uuid.UUID) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	return s.issue(ctx, user, tenantID)
}

// issue signs tokens for user inside tenantID, or inside the user's first
// shop when tenantID is zero
func (s *AuthService) issue(ctx context.Context, user *entity.User, tenantID uuid.UUID) (*LoginOutput, error) {
	tenants, err := s.tenantRepo.GetUserTenants(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	var tenant *entity.Tenant
	for i := range tenants {
		if tenantID == uuid.Nil || tenants[i].ID == tenantID {
			tenant = &tenants[i]
			break
		}
	}
	if tenant == nil {
		return nil, apperror.NewAppError(apperror.ErrForbidden.Code, "You are not a member of this business")
	}

	membership, err := s.tenantRepo.GetMembership(ctx, tenant.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperror.ErrForbidden
	}

	permissions := []string{}
	role, err := s.roleRepo.GetByName(ctx, membership.Role)
	if err != nil {
		return nil, err
	}
	if role != nil {
		permissions = role.PermissionNames()
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, tenant.ID, user.Email, []string{membership.Role}, permissions)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		Tenant:       tenant,
		Role:         membership.Role,
		Permissions:  permissions,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}

// Profile is the signed-in user with the shops they belong to
type Profile struct {
	User    *entity.User    `json:"user"`
	Tenants []entity.Tenant `json:"tenants"`
}

// GetProfile returns the current user by ID
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	tenants, err := s.tenantRepo.GetUserTenants(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tenants == nil {
		tenants = []entity.Tenant{}
	}
	return &Profile{User: user, Tenants: tenants}, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	if len(input.NewPassword) < minPasswordLength {
		return apperror.NewBadRequestError("Password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewBadRequestError("Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
