package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
	"github.com/sekrobank/sekro_bank_api/internal/dto"
	"github.com/sekrobank/sekro_bank_api/internal/middleware"
)

// reviewHandler handles the employee loan review queue.
type reviewHandler struct {
	reviewService portssvc.ReviewSvcFacade
}

func newReviewHandler(rs portssvc.ReviewSvcFacade) *reviewHandler {
	return &reviewHandler{reviewService: rs}
}

// registerReviewRoutes registers the employee-only review routes.
func registerReviewRoutes(rg *gin.RouterGroup, reviewService portssvc.ReviewSvcFacade) {
	h := newReviewHandler(reviewService)

	tasks := rg.Group("/employee/loan-review/tasks", middleware.RequireEmployee())
	{
		tasks.GET("", h.listOpenTasks)
		tasks.GET("/:id", h.getTask)
		tasks.POST("/:id/claim", h.claimTask)
		tasks.POST("/:id/release", h.releaseTask)
		tasks.POST("/:id/complete", h.completeTask)
	}
}

// listOpenTasks godoc
// @Summary List open review tasks
// @Description Returns the review queue, oldest first
// @Tags review
// @Produce json
// @Success 200 {array} dto.ReviewTaskResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /employee/loan-review/tasks [get]
func (h *reviewHandler) listOpenTasks(c *gin.Context) {
	tasks, err := h.reviewService.ListOpenTasks(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListReviewTaskResponse(tasks))
}

// getTask godoc
// @Summary Get a review task
// @Tags review
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.ReviewTaskResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /employee/loan-review/tasks/{id} [get]
func (h *reviewHandler) getTask(c *gin.Context) {
	task, err := h.reviewService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewTaskResponse(task))
}

// claimTask godoc
// @Summary Claim a review task
// @Description Assigns the task to the calling reviewer. Claiming a task held by another reviewer fails.
// @Tags review
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.ReviewTaskResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Task already claimed or completed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /employee/loan-review/tasks/{id}/claim [post]
func (h *reviewHandler) claimTask(c *gin.Context) {
	reviewerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	task, err := h.reviewService.ClaimTask(c.Request.Context(), c.Param("id"), reviewerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewTaskResponse(task))
}

// releaseTask godoc
// @Summary Release a claimed review task
// @Description Returns the reviewer's claimed task to the queue
// @Tags review
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.ReviewTaskResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Task claimed by another reviewer"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /employee/loan-review/tasks/{id}/release [post]
func (h *reviewHandler) releaseTask(c *gin.Context) {
	reviewerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	task, err := h.reviewService.ReleaseTask(c.Request.Context(), c.Param("id"), reviewerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewTaskResponse(task))
}

// completeTask godoc
// @Summary Complete a review task
// @Description Records the reviewer's decision. APPROVED generates the offer set; REJECTED requires notes.
// @Tags review
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param decision body dto.CompleteReviewRequest true "Decision"
// @Param X-Idempotency-Key header string false "Idempotency key"
// @Success 200 {object} dto.ReviewTaskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Task not claimed by the caller"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Task already completed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /employee/loan-review/tasks/{id}/complete [post]
func (h *reviewHandler) completeTask(c *gin.Context) {
	var req dto.CompleteReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: "Invalid request format: " + err.Error()})
		return
	}

	reviewerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
		return
	}

	task, err := h.reviewService.CompleteTask(c.Request.Context(), c.Param("id"), reviewerID, domain.ReviewDecision(req.Decision), req.Notes, idempotencyKey(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewTaskResponse(task))
}
