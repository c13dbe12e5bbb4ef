package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/application/service"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/response"
)

// ReceiptHandler handles sale HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
	queryService   *service.ReceiptQueryService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService, queryService *service.ReceiptQueryService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, queryService: queryService}
}

func productLines(lines []request.ProductLineRequest) []service.ProductLineInput {
	out := make([]service.ProductLineInput, len(lines))
	for i, l := range lines {
		out[i] = service.ProductLineInput{Name: l.Name, Unit: l.Unit, Quantity: l.Quantity}
	}
	return out
}

// Create handles recording a sale. The signed-in user is the worker.
// When the credit gate finds an older unpaid debt the receipt is still
// saved and the debt is returned with a 200 instead of a 201.
func (h *ReceiptHandler) Create(c *gin.Context) {
	workerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request.CreateReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.receiptService.CreateReceipt(c.Request.Context(), &service.CreateReceiptInput{
		WorkerID:      workerID,
		Customer:      req.Customer.CustomerRef,
		Products:      productLines(req.Products),
		Total:         req.Total,
		AmountPaid:    req.AmountPaid,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		CheckDebt:     req.CheckDebt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.ExistingDebt != nil {
		response.OK(c, "Receipt created; customer has an unpaid debt", result)
		return
	}
	response.Created(c, "Receipt created successfully", result)
}

// List handles listing the receipts of one day (?date=YYYY-MM-DD, default today)
func (h *ReceiptHandler) List(c *gin.Context) {
	receipts, err := h.queryService.GetReceiptsForDay(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipts retrieved successfully", receipts)
}

// Get handles getting a single receipt
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.queryService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// Update handles editing a receipt
func (h *ReceiptHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.UpdateReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.receiptService.UpdateReceipt(c.Request.Context(), &service.UpdateReceiptInput{
		ReceiptID:     id,
		Customer:      req.Customer.CustomerRef,
		Products:      productLines(req.Products),
		Total:         req.Total,
		AmountPaid:    req.AmountPaid,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		Version:       req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt updated successfully", result)
}

// Flag handles voiding or reinstating a receipt
func (h *ReceiptHandler) Flag(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.FlagReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.receiptService.FlagReceipt(c.Request.Context(), id, *req.Flagged)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Receipt flag updated"
	if !result.Changed {
		message = "Receipt already in requested state"
	}
	response.OK(c, message, result)
}

// Delete handles deleting a receipt
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.receiptService.DeleteReceipt(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt deleted successfully", nil)
}
