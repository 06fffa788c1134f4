package handler

import (
	"io"
	"net/http"
	"strconv"

	"cleancity/backend/internal/apperr"
	"cleancity/backend/internal/models"
	"cleancity/backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

// ListComplaints returns the caller's complaints, or all complaints with
// action history for administrators.
func (h *Handler) ListComplaints(c *gin.Context) {
	complaints, err := h.Workflow.ListComplaints(callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// FileComplaint accepts a multipart form with the complaint fields and an
// optional photo.
func (h *Handler) FileComplaint(c *gin.Context) {
	latitude, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	longitude, lonErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lonErr != nil {
		h.respondError(c, apperr.ErrValidation)
		return
	}

	in := workflow.FileComplaintInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Latitude:    latitude,
		Longitude:   longitude,
	}

	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			h.respondError(c, err)
			return
		}
		defer f.Close()
		in.Image, err = io.ReadAll(f)
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	complaint, err := h.Workflow.FileComplaint(callerFrom(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

type updateStatusRequest struct {
	Status models.ComplaintStatus `json:"status" binding:"required"`
}

// UpdateComplaintStatus is the direct admin override on a complaint's status.
func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.ErrValidation)
		return
	}

	if err := h.Workflow.UpdateComplaintStatus(callerFrom(c), c.Param("id"), req.Status); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteComplaint removes a complaint, its action history and its photo.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	if err := h.Workflow.DeleteComplaint(callerFrom(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type assignWorkerRequest struct {
	WorkerID string `json:"worker_id" binding:"required"`
}

// AssignWorker creates a new action on the complaint for the given worker.
func (h *Handler) AssignWorker(c *gin.Context) {
	var req assignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.ErrValidation)
		return
	}

	actionID, err := h.Workflow.AssignWorker(callerFrom(c), c.Param("id"), req.WorkerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action_id": actionID})
}

// RewardBalance returns the caller's reward point balance.
func (h *Handler) RewardBalance(c *gin.Context) {
	points, err := h.Workflow.RewardBalance(callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reward_points": points})
}
