package handler

import (
	"errors"
	"net/http"
	"strconv"

	"sitterhub/internal/httpapi/dto"
	"sitterhub/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterRoutes registers the notification routes (auth middleware is
// applied by the caller)
func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.ListUnread)
		notifications.PATCH("/:id/read", h.MarkAsRead)
		notifications.POST("/read-all", h.MarkAllAsRead)
	}
}

// ListUnread returns the caller's unread notifications
// GET /api/v1/notifications
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.Fail("User not authenticated"))
		return
	}

	notifications, err := h.notificationService.GetUnread(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.OK(notifications))
}

// MarkAsRead marks one of the caller's notifications as read
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.Fail("User not authenticated"))
		return
	}

	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid notification ID"))
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), userID.(string), notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, dto.Fail(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.Message("Notification marked as read"))
}

// MarkAllAsRead marks all of the caller's notifications as read
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.Fail("User not authenticated"))
		return
	}

	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, dto.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.Message("All notifications marked as read"))
}
