package handler

import (
	"errors"
	"net/http"

	"sitterhub/internal/httpapi/dto"
	"sitterhub/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// RegisterTaskRoutes registers the task-scoped review routes (these sit
// behind the auth middleware applied on the parent group)
func (h *ReviewHandler) RegisterTaskRoutes(router *gin.RouterGroup) {
	review := router.Group("/:task_id/review")
	{
		review.POST("", h.Create)
		review.PATCH("", h.Update)
		review.GET("", h.GetByTask)
	}
}

// RegisterListingRoutes registers the public per-user listing routes
func (h *ReviewHandler) RegisterListingRoutes(router *gin.RouterGroup) {
	router.GET("/pet-owners/:user_id/reviews", h.ListOwnerReviews)
	router.GET("/sitters/:user_id/reviews", h.ListSitterReviews)
}

// Create submits a new review for a completed task
// POST /api/v1/tasks/:task_id/review
func (h *ReviewHandler) Create(c *gin.Context) {
	taskID := c.Param("task_id")

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
		return
	}

	if err := h.reviewService.CreateReview(c.Request.Context(), taskID, req.UserID, req.Rating, req.Content); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Message("Create Successfully!"))
}

// Update amends the acting party's half of an existing review
// PATCH /api/v1/tasks/:task_id/review
func (h *ReviewHandler) Update(c *gin.Context) {
	taskID := c.Param("task_id")

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
		return
	}

	if err := h.reviewService.UpdateReview(c.Request.Context(), taskID, req.UserID, req.Rating, req.Content); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Message("Update Successfully!"))
}

// GetByTask fetches the review attached to a task
// GET /api/v1/tasks/:task_id/review
func (h *ReviewHandler) GetByTask(c *gin.Context) {
	taskID := c.Param("task_id")

	review, err := h.reviewService.GetReviewByTask(c.Request.Context(), taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.FromModelToReviewResponse(review)))
}

// ListOwnerReviews lists all reviews where the user is the pet owner
// GET /api/v1/pet-owners/:user_id/reviews
func (h *ReviewHandler) ListOwnerReviews(c *gin.Context) {
	userID := c.Param("user_id")

	reviews, err := h.reviewService.GetOwnerReviews(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.FromModelsToReviewResponses(reviews)))
}

// ListSitterReviews lists all reviews where the user is the sitter
// GET /api/v1/sitters/:user_id/reviews
func (h *ReviewHandler) ListSitterReviews(c *gin.Context) {
	userID := c.Param("user_id")

	reviews, err := h.reviewService.GetSitterReviews(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.FromModelsToReviewResponses(reviews)))
}

// writeError maps service sentinels to response codes
func (h *ReviewHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, dto.Fail("Order is not found!"))
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, dto.Fail("Review is not found!"))
	case errors.Is(err, service.ErrNotParticipant):
		c.JSON(http.StatusForbidden, dto.Fail("User is not a participant of this task!"))
	default:
		c.JSON(http.StatusInternalServerError, dto.Fail(err.Error()))
	}
}
