package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/application/service"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/response"
)

// TenantHandler handles shop settings and worker HTTP requests
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// GetCurrentTenant returns the shop the token is bound to
func (h *TenantHandler) GetCurrentTenant(c *gin.Context) {
	tenant, err := h.tenantService.GetCurrentTenant(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tenant retrieved successfully", gin.H{
		"tenant": tenant,
	})
}

// UpdateTenant changes the shop name and settings
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req request.UpdateTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), &service.UpdateTenantInput{
		Name:            req.Name,
		Currency:        req.Currency,
		Timezone:        req.Timezone,
		Locale:          req.Locale,
		TaxRate:         req.TaxRate,
		TaxLabel:        req.TaxLabel,
		ReceiptTemplate: req.ReceiptTemplate,
		ReceiptFooter:   req.ReceiptFooter,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tenant updated successfully", gin.H{
		"tenant": tenant,
	})
}

// GetMembers lists the workers of the shop
func (h *TenantHandler) GetMembers(c *gin.Context) {
	members, err := h.tenantService.GetMembers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Members retrieved successfully", members)
}

// AddWorker adds a worker to the shop
func (h *TenantHandler) AddWorker(c *gin.Context) {
	var req request.AddWorkerRequest
	if !bindJSON(c, &req) {
		return
	}

	membership, err := h.tenantService.AddWorker(c.Request.Context(), &service.AddWorkerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Worker added successfully", membership)
}

// GetMember returns one worker of the shop
func (h *TenantHandler) GetMember(c *gin.Context) {
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	membership, err := h.tenantService.GetMembership(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member retrieved successfully", membership)
}
