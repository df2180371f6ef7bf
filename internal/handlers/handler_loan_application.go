package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
)

// loanApplicationHandler handles the customer side of loan origination.
type loanApplicationHandler struct {
	originationService portssvc.OriginationSvcFacade
}

func newLoanApplicationHandler(os portssvc.OriginationSvcFacade) *loanApplicationHandler {
	return &loanApplicationHandler{originationService: os}
}

// registerLoanApplicationRoutes registers loan application routes.
func registerLoanApplicationRoutes(rg *gin.RouterGroup, originationService portssvc.OriginationSvcFacade) {
	h := newLoanApplicationHandler(originationService)

	applications := rg.Group("/loan-applications")
	{
		applications.POST("", h.apply)
		applications.GET("", h.listApplications)
		applications.GET("/:id", h.getApplication)
		applications.GET("/:id/offers", h.getOffers)
		applications.POST("/:id/accept-offer", h.acceptOffer)
		applications.POST("/:id/decline", h.declineOffers)
		applications.GET("/:id/human-task", h.getCustomerTask)
	}
}

// apply godoc
// @Summary Submit a loan application
// @Description Submits a new application. It is screened automatically and either decided or queued for review.
// @Tags loan-applications
// @Accept json
// @Produce json
// @Param application body dto.ApplyLoanRequest true "Application details"
// @Param X-Idempotency-Key header string false "Idempotency key"
// @Success 201 {object} dto.LoanApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "An application is already in progress"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loan-applications [post]
func (h *loanApplicationHandler) apply(c *gin.Context) {
	var req dto.ApplyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	application, err := h.originationService.SubmitApplication(c.Request.Context(), req, userID, idempotencyKey(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanApplicationResponse(application))
}

// listApplications godoc
// @Summary List the user's loan applications
// @Tags loan-applications
// @Produce json
// @Success 200 {array} dto.LoanApplicationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loan-applications [get]
func (h *loanApplicationHandler) listApplications(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	applications, err := h.originationService.ListApplications(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	responses := make([]dto.LoanApplicationResponse, len(applications))
	for i := range applications {
		responses[i] = dto.ToLoanApplicationResponse(&applications[i])
	}
	c.JSON(http.StatusOK, responses)
}

// getApplication godoc
// @Summary Get a loan application
// @Tags loan-applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.LoanApplicationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loan-applications/{id} [get]
func (h *loanApplicationHandler) getApplication(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	application, err := h.originationService.GetApplication(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanApplicationResponse(application))
}

// getOffers godoc
// @Summary List the offers presented for an application
// @Tags loan-applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.ListLoanOffersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Application has no offers yet"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loan-applications/{id}/offers [get]
func (h *loanApplicationHandler) getOffers(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	offers, err := h.originationService.GetOffers(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListLoanOffersResponse{ApplicationID: c.Param("id"), Offers: dto.ToListLoanOfferResponse(offers)})
}

// acceptOffer godoc
// @Summary Accept a loan offer
// @Description Accepts one of the presented offers: opens the loan, disburses the principal and voids the siblings atomically
// @Tags loan-applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param accept body dto.AcceptOfferRequest true "Selected offer"
// @Param X-Idempotency-Key header string false "Idempotency key"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Application not in OFFERS_PRESENTED, or offer void"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loan-applications/{id}/accept-offer [post]
func (h *loanApplicationHandler) acceptOffer(c *gin.Context) {
	var req dto.AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	loan, err := h.originationService.AcceptOffer(c.Request.Context(), c.Param("id"), req.SelectedOfferID, userID, idempotencyKey(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// declineOffers godoc
// @Summary Decline the presented offers
// @Description Declines all presented offers: the application closes in DECLINED and every offer is voided
// @Tags loan-applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.LoanApplicationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Application not in OFFERS_PRESENTED"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loan-applications/{id}/decline [post]
func (h *loanApplicationHandler) declineOffers(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	application, err := h.originationService.DeclineOffers(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanApplicationResponse(application))
}

// getCustomerTask godoc
// @Summary Get the review task for an application
// @Description Returns the customer-facing view of the application's human review task, if one exists
// @Tags loan-applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.CustomerTaskResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loan-applications/{id}/human-task [get]
func (h *loanApplicationHandler) getCustomerTask(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	task, err := h.originationService.GetCustomerTask(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if task == nil {
		c.JSON(http.StatusOK, dto.CustomerTaskResponse{Found: false})
		return
	}
	resp := dto.ToReviewTaskResponse(task)
	c.JSON(http.StatusOK, dto.CustomerTaskResponse{Found: true, Task: &resp})
}
