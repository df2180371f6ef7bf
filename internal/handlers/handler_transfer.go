package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
)

// transferHandler handles internal and external money movement.
type transferHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newTransferHandler(as portssvc.AccountSvcFacade) *transferHandler {
	return &transferHandler{accountService: as}
}

// RegisterTransferRoutes registers transfer routes. The settlement callback
// stands in for the partner network and is not a customer surface, so it is
// restricted to the employee role.
func RegisterTransferRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newTransferHandler(accountService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("/internal", h.internalTransfer)
		transfers.POST("/external", h.externalTransfer)
		transfers.POST("/external/:id/settle", middleware.RequireEmployee(), h.settleExternalTransfer)
	}
}

// internalTransfer godoc
// @Summary Transfer between accounts
// @Description Atomically debits the source account and credits the destination account
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body dto.InternalTransferRequest true "Transfer details"
// @Param X-Idempotency-Key header string false "Idempotency key"
// @Success 201 {array} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "An account is closed"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/internal [post]
func (h *transferHandler) internalTransfer(c *gin.Context) {
	var req dto.InternalTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	txns, err := h.accountService.InternalTransfer(c.Request.Context(), req, userID, idempotencyKey(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToListTransactionResponse(txns))
}

// externalTransfer godoc
// @Summary Transfer to another institution
// @Description Debits the source account and records a PENDING transfer awaiting settlement
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body dto.ExternalTransferRequest true "Transfer details"
// @Param X-Idempotency-Key header string false "Idempotency key"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/external [post]
func (h *transferHandler) externalTransfer(c *gin.Context) {
	var req dto.ExternalTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	txn, err := h.accountService.ExternalTransfer(c.Request.Context(), req, userID, idempotencyKey(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// settleExternalTransfer godoc
// @Summary Settle a pending external transfer
// @Description Resolves a PENDING external transfer to POSTED or FAILED. FAILED refunds the held amount. Settling an already settled transfer returns it unchanged.
// @Tags transfers
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param settle body dto.SettleExternalTransferRequest true "Settlement outcome"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Employee role required"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/external/{id}/settle [post]
func (h *transferHandler) settleExternalTransfer(c *gin.Context) {
	var req dto.SettleExternalTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.accountService.SettleExternalTransfer(c.Request.Context(), c.Param("id"), domain.TransactionStatus(req.Outcome))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
