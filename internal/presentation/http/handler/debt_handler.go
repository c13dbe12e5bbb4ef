package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/application/service"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/response"
)

// DebtHandler handles debt and payment HTTP requests
type DebtHandler struct {
	debtService  *service.DebtService
	queryService *service.ReceiptQueryService
}

// NewDebtHandler creates a new debt handler
func NewDebtHandler(debtService *service.DebtService, queryService *service.ReceiptQueryService) *DebtHandler {
	return &DebtHandler{debtService: debtService, queryService: queryService}
}

// List handles listing outstanding debts (?date=YYYY-MM-DD&show_all=true)
func (h *DebtHandler) List(c *gin.Context) {
	debts, err := h.queryService.GetDebts(c.Request.Context(), c.Query("date"), boolQuery(c, "show_all"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Debts retrieved successfully", debts)
}

// Pay handles a payment against a debt. Money left over after the debt is
// settled goes to the customer's other debts, oldest first.
func (h *DebtHandler) Pay(c *gin.Context) {
	workerID, ok := currentUser(c)
	if !ok {
		return
	}
	debtID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.debtService.MakePayment(c.Request.Context(), &service.MakePaymentInput{
		DebtID:        debtID,
		WorkerID:      workerID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", result)
}

// Payments handles listing the payments recorded against a debt
func (h *DebtHandler) Payments(c *gin.Context) {
	debtID, ok := idParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.debtService.ListPayments(c.Request.Context(), debtID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", payments)
}
