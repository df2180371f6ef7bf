package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
)

// loanHandler handles funded loan servicing: reads, payments and autopay.
type loanHandler struct {
	servicingService portssvc.ServicingSvcFacade
}

func newLoanHandler(ss portssvc.ServicingSvcFacade) *loanHandler {
	return &loanHandler{servicingService: ss}
}

func registerLoanRoutes(rg *gin.RouterGroup, servicingService portssvc.ServicingSvcFacade) {
	h := newLoanHandler(servicingService)

	loans := rg.Group("/loans")
	{
		loans.GET("", h.listLoans)
		loans.GET("/:id", h.getLoan)
		loans.GET("/:id/transactions", h.listLoanTransactions)
		loans.POST("/:id/payments", h.makePayment)
		loans.PUT("/:id/autopay", h.configureAutopay)
		loans.GET("/:id/autopay", h.getAutopay)
		loans.DELETE("/:id/autopay", h.deleteAutopay)
		loans.POST("/:id/autopay/pause", h.pauseAutopay)
		loans.POST("/:id/autopay/resume", h.resumeAutopay)
	}
}

// listLoans godoc
// @Summary List the user's loans
// @Tags loans
// @Produce json
// @Success 200 {array} dto.LoanResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans [get]
func (h *loanHandler) listLoans(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	loans, err := h.servicingService.ListLoans(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListLoanResponse(loans))
}

// getLoan godoc
// @Summary Get a loan
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	loan, err := h.servicingService.GetLoan(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// listLoanTransactions godoc
// @Summary List a loan's payment history
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {array} dto.LoanTransactionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/transactions [get]
func (h *loanHandler) listLoanTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	txns, err := h.servicingService.ListLoanTransactions(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListLoanTransactionResponse(txns))
}

// makePayment godoc
// @Summary Make a loan payment
// @Description Debits the payment account and reduces the outstanding balance atomically. Paying the balance exactly closes the loan.
// @Tags loans
// @Accept json
// @Produce json
// @Param id path string true "Loan ID"
// @Param payment body dto.MakePaymentRequest true "Payment details"
// @Param X-Idempotency-Key header string false "Idempotency key"
// @Success 201 {object} dto.LoanTransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Loan not active"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/payments [post]
func (h *loanHandler) makePayment(c *gin.Context) {
	var req dto.MakePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	txn, err := h.servicingService.MakePayment(c.Request.Context(), c.Param("id"), req, userID, domain.InitiatedByCustomer, idempotencyKey(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanTransactionResponse(txn))
}

// configureAutopay godoc
// @Summary Configure autopay for a loan
// @Description Creates or replaces the loan's autopay schedule
// @Tags loans
// @Accept json
// @Produce json
// @Param id path string true "Loan ID"
// @Param autopay body dto.ConfigureAutopayRequest true "Schedule details"
// @Success 200 {object} dto.AutopayResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Loan not active"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/autopay [put]
func (h *loanHandler) configureAutopay(c *gin.Context) {
	var req dto.ConfigureAutopayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	schedule, err := h.servicingService.ConfigureAutopay(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAutopayResponse(schedule, time.Now().UTC()))
}

// getAutopay godoc
// @Summary Get a loan's autopay schedule
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.AutopayResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/autopay [get]
func (h *loanHandler) getAutopay(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	schedule, err := h.servicingService.GetAutopay(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAutopayResponse(schedule, time.Now().UTC()))
}

// deleteAutopay godoc
// @Summary Remove a loan's autopay schedule
// @Tags loans
// @Param id path string true "Loan ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/autopay [delete]
func (h *loanHandler) deleteAutopay(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	if err := h.servicingService.DeleteAutopay(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pauseAutopay godoc
// @Summary Pause a loan's autopay schedule
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.AutopayResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/autopay/pause [post]
func (h *loanHandler) pauseAutopay(c *gin.Context) {
	h.setPaused(c, true)
}

// resumeAutopay godoc
// @Summary Resume a paused autopay schedule
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.AutopayResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/autopay/resume [post]
func (h *loanHandler) resumeAutopay(c *gin.Context) {
	h.setPaused(c, false)
}

func (h *loanHandler) setPaused(c *gin.Context, paused bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	schedule, err := h.servicingService.SetAutopayPaused(c.Request.Context(), c.Param("id"), userID, paused)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAutopayResponse(schedule, time.Now().UTC()))
}
