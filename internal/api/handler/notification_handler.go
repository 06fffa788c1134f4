package handler

import (
	"net/http"
	"strconv"

	"cleancity/backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the caller's newest notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.Notify.List(callerFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// UnreadCount returns the caller's derived unread notification count.
func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.Notify.UnreadCount(callerFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.respondError(c, apperr.ErrValidation)
		return
	}
	if err := h.Notify.MarkRead(callerFrom(c).ID, uint(id)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks every notification of the caller as read.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.Notify.MarkAllRead(callerFrom(c).ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
