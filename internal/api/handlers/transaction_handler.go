package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divesh330/timevault/internal/api/middleware"
	"github.com/divesh330/timevault/internal/services"
)

// TransactionHandler handles REST requests for the purchase workflow.
type TransactionHandler struct {
	transactionService services.ITransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.ITransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

type createTransactionRequest struct {
	WatchID      string `json:"watch_id" binding:"required"`
	ShippingInfo string `json:"shipping_info"`
	TrackingID   string `json:"tracking_id"`
}

type updateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateTransaction handles POST /v1/transaction
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: watch_id is required"})
		return
	}

	txn, err := h.transactionService.CreateTransaction(
		c.Request.Context(), middleware.CallerID(c), req.WatchID, req.ShippingInfo, req.TrackingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// GetUserTransactions handles GET /v1/transaction
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	transactionType := c.DefaultQuery("type", services.TransactionTypeAll)

	txns, err := h.transactionService.GetUserTransactions(c.Request.Context(), middleware.CallerID(c), transactionType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": txns})
}

// GetTransactionByID handles GET /v1/transaction/:id
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	detail, err := h.transactionService.GetTransactionByID(c.Request.Context(), middleware.CallerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateTransactionStatus handles PATCH /v1/transaction/:id/status
func (h *TransactionHandler) UpdateTransactionStatus(c *gin.Context) {
	var req updateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: status is required"})
		return
	}

	txn, err := h.transactionService.UpdateTransactionStatus(
		c.Request.Context(), middleware.CallerID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}
