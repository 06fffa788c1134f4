package handler

import (
	"net/http"

	"cleancity/backend/internal/apperr"
	"cleancity/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SearchUsers matches accounts by name or email, optionally narrowed by role.
// Admins use it to find a worker to assign.
func (h *Handler) SearchUsers(c *gin.Context) {
	roleFilter := models.Role(c.Query("role"))
	if roleFilter == "all" {
		roleFilter = ""
	}
	users, err := h.Workflow.SearchUsers(c.Query("q"), roleFilter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type changeRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// ChangeUserRole sets another account's role. Super-admin only.
func (h *Handler) ChangeUserRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.ErrValidation)
		return
	}
	if err := h.Workflow.ChangeUserRole(callerFrom(c), c.Param("id"), req.Role); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
