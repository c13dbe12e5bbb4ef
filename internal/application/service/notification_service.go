package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/sangkips/tillbook-api/pkg/pagination"
)

// NotificationService reads and acknowledges stock notifications
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// NotificationList is a page of notifications with the unread count
type NotificationList struct {
	*pagination.PaginatedResult[entity.Notification]
	Unread int64 `json:"unread"`
}

// List returns notifications, newest first
func (s *NotificationService) List(ctx context.Context, params *pagination.PaginationParams, unreadOnly bool) (*NotificationList, error) {
	params.Validate()
	items, total, err := s.notificationRepo.List(ctx, params, unreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return &NotificationList{
		PaginatedResult: pagination.NewPaginatedResult(items, pag),
		Unread:          unread,
	}, nil
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	found, err := s.notificationRepo.MarkRead(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFoundError("Notification")
	}
	return nil
}

// MarkAllRead marks every notification of the tenant as read
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx)
}
