package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/sangkips/tillbook-api/pkg/pagination"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) domainRepo.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	return conn(ctx, r.db).Create(n).Error
}

func (r *notificationRepository) List(ctx context.Context, params *pagination.PaginationParams, unreadOnly bool) ([]entity.Notification, int64, error) {
	var notifications []entity.Notification
	var total int64

	query := conn(ctx, r.db).Model(&entity.Notification{}).Scopes(TenantScope(ctx))
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&notifications).Error

	return notifications, total, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.Notification{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Update("read", true)
	return result.RowsAffected > 0, result.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	result := conn(ctx, r.db).
		Model(&entity.Notification{}).
		Scopes(TenantScope(ctx)).
		Where("read = ?", false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&entity.Notification{}).
		Scopes(TenantScope(ctx)).
		Where("read = ?", false).
		Count(&count).Error
	return count, err
}
