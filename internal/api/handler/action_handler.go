package handler

import (
	"io"
	"net/http"
	"strconv"

	"cleancity/backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

func actionIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.ErrValidation
	}
	return uint(id), nil
}

// ListActions returns the worker's own assignments with complaint context.
func (h *Handler) ListActions(c *gin.Context) {
	actions, err := h.Workflow.ListActions(callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

// SubmitEvidence accepts the worker's evidence image and moves the action to
// under_review.
func (h *Handler) SubmitEvidence(c *gin.Context) {
	actionID, err := actionIDParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		h.respondError(c, apperr.ErrValidation)
		return
	}
	f, err := file.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		h.respondError(c, err)
		return
	}

	key, err := h.Workflow.SubmitEvidence(callerFrom(c), actionID, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "key": key})
}

type reviewActionRequest struct {
	Approved *bool   `json:"approved" binding:"required"`
	Notes    *string `json:"notes"`
}

// ReviewAction approves or rejects an under_review action.
func (h *Handler) ReviewAction(c *gin.Context) {
	actionID, err := actionIDParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req reviewActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.ErrValidation)
		return
	}

	if err := h.Workflow.ReviewAction(callerFrom(c), actionID, *req.Approved, req.Notes); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// EvidenceImage streams the stored evidence blob for the assigned worker or
// an administrator.
func (h *Handler) EvidenceImage(c *gin.Context) {
	actionID, err := actionIDParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := h.Workflow.EvidenceImage(callerFrom(c), actionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
