package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/application/service"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/response"
)

// NotificationHandler handles stock notification HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles listing notifications (?unread=true for unread only)
func (h *NotificationHandler) List(c *gin.Context) {
	result, err := h.notificationService.List(c.Request.Context(), pageParams(c), boolQuery(c, "unread"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notifications retrieved successfully", result)
}

// MarkRead handles marking one notification as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notification marked as read", nil)
}

// MarkAllRead handles marking every notification as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.notificationService.MarkAllRead(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notifications marked as read", gin.H{"updated": count})
}
