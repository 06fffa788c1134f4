package handler

import (
	"errors"
	"net/http"

	"cleancity/backend/internal/apperr"
	"cleancity/backend/internal/notify"
	"cleancity/backend/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RevocationChecker answers whether a user's tokens have been revoked. The
// storage service satisfies it via the Redis revocation cache.
type RevocationChecker interface {
	IsUserRevoked(userID string) (bool, error)
}

// Handler wires the command surface to the workflow and dispatcher services.
type Handler struct {
	Workflow    *workflow.Service
	Notify      *notify.Service
	Revocations RevocationChecker
	JWTSecret   []byte
	Log         *logrus.Logger
}

func NewHandler(wf *workflow.Service, nt *notify.Service, rc RevocationChecker, secret []byte, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{Workflow: wf, Notify: nt, Revocations: rc, JWTSecret: secret, Log: log}
}

// RegisterRoutes attaches every command to the router. Authentication and
// role gates run before any handler body touches data.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api", h.AuthRequired())

	api.GET("/complaints", h.ListComplaints)
	api.POST("/complaints", h.FileComplaint)
	api.GET("/rewards/me", h.RewardBalance)

	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/unread_count", h.UnreadCount)
	api.POST("/notifications/:id/read", h.MarkNotificationRead)
	api.POST("/notifications/read_all", h.MarkAllNotificationsRead)

	worker := api.Group("", h.RequireWorker)
	worker.GET("/actions", h.ListActions)
	worker.POST("/actions/:id/evidence", h.SubmitEvidence)

	// Evidence read-back is gated inside the workflow: assigned worker or admin.
	api.GET("/actions/:id/image", h.EvidenceImage)

	admin := api.Group("", h.RequireAdmin)
	admin.POST("/complaints/:id/status", h.UpdateComplaintStatus)
	admin.DELETE("/complaints/:id", h.DeleteComplaint)
	admin.POST("/complaints/:id/assign", h.AssignWorker)
	admin.POST("/actions/:id/review", h.ReviewAction)
	admin.GET("/users/search", h.SearchUsers)

	super := api.Group("", h.RequireSuperAdmin)
	super.POST("/users/:id/role", h.ChangeUserRole)
}

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is logged and surfaced as an opaque 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.ErrUnauthorized.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": apperr.ErrForbidden.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": apperr.ErrNotFound.Error()})
	case errors.Is(err, apperr.ErrInvalidTarget):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": apperr.ErrInvalidTarget.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": apperr.ErrInvalidState.Error()})
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.ErrValidation.Error()})
	default:
		h.Log.WithError(err).WithField("path", c.FullPath()).Error("command failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
