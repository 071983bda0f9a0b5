package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/shopcore/backend/internal/application/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/interfaces/http/dto"
)

// StockHandler exposes the stock allocation endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// StockOperationRequest is the body for single-product stock operations
type StockOperationRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// BatchOperationRequest is the body for multi-product stock operations
type BatchOperationRequest struct {
	Items []inventoryapp.BatchItem `json:"items" binding:"required,min=1,dive"`
}

// AvailabilityResponse reports whether a requested quantity could be served
type AvailabilityResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Available bool      `json:"available"`
}

// CheckAvailability handles GET /stock/:productId/availability?quantity=N.
// The answer is an unlocked snapshot and may be stale by the time the
// caller acts on it.
func (h *StockHandler) CheckAvailability(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	quantity, err := strconv.ParseInt(c.DefaultQuery("quantity", "1"), 10, 64)
	if err != nil || quantity <= 0 {
		h.BadRequest(c, "Quantity must be a positive integer")
		return
	}

	available, err := h.stockService.CheckAvailability(c.Request.Context(), productID, quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AvailabilityResponse{
		ProductID: productID,
		Quantity:  quantity,
		Available: available,
	})
}

// Reduce handles POST /stock/reduce
func (h *StockHandler) Reduce(c *gin.Context) {
	var req StockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	level, err := h.stockService.Reduce(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// Restore handles POST /stock/restore
func (h *StockHandler) Restore(c *gin.Context) {
	var req StockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	level, err := h.stockService.Restore(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// AddStock handles POST /stock/add
func (h *StockHandler) AddStock(c *gin.Context) {
	var req StockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	level, err := h.stockService.AddStock(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// ReduceBatch handles POST /stock/reduce-batch
func (h *StockHandler) ReduceBatch(c *gin.Context) {
	var req BatchOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.stockService.ReduceMany(c.Request.Context(), req.Items)
	h.respondBatch(c, result, err)
}

// RestoreBatch handles POST /stock/restore-batch
func (h *StockHandler) RestoreBatch(c *gin.Context) {
	var req BatchOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.stockService.RestoreMany(c.Request.Context(), req.Items)
	h.respondBatch(c, result, err)
}

// respondBatch reports a batch outcome. A partial failure still returns the
// full item-by-item result so the caller can see what committed and decide
// whether to compensate. Nothing is rolled back server-side.
func (h *StockHandler) respondBatch(c *gin.Context, result *inventoryapp.BatchResult, err error) {
	if err != nil && result == nil {
		h.HandleError(c, err)
		return
	}
	if err != nil {
		status := http.StatusUnprocessableEntity
		code := dto.ErrCodeInternal
		message := "Batch partially applied"
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			status = dto.GetHTTPStatus(domainErr.Code)
			code = domainErr.Code
			message = domainErr.Message
		}
		c.JSON(status, dto.Response{
			Success: false,
			Data:    result,
			Error:   &dto.ErrorInfo{Code: code, Message: message},
		})
		return
	}
	h.Success(c, result)
}
