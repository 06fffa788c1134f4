package handler

import (
	"net/http"
	"strings"
	"time"

	"cleancity/backend/internal/apperr"
	"cleancity/backend/internal/config"
	"cleancity/backend/internal/models"
	"cleancity/backend/internal/workflow"

	"github.com/gin-gonic/gin"

	jwt "github.com/golang-jwt/jwt/v5"
)

const callerContextKey = "caller"

// GenerateToken mints a caller token the way the identity provider does:
// subject plus asserted role. Used by the admin CLI and tests.
func GenerateToken(secret []byte, userID string, role models.Role) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  time.Now().Add(config.TokenTTL).Unix(),
		"iss":  config.TokenIssuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// AuthRequired verifies the bearer token, rejects revoked users and installs
// the resolved caller identity in the request context. It runs before every
// command; an unauthenticated request never reaches entity data.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := h.resolveCaller(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperr.ErrUnauthorized.Error()})
			return
		}
		c.Set(callerContextKey, caller)
		c.Next()
	}
}

func (h *Handler) resolveCaller(header string) (workflow.Caller, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return workflow.Caller{}, apperr.ErrUnauthorized
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.ErrUnauthorized
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return workflow.Caller{}, apperr.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return workflow.Caller{}, apperr.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	roleClaim, _ := claims["role"].(string)
	role := models.Role(roleClaim)
	if sub == "" || !role.Valid() {
		return workflow.Caller{}, apperr.ErrUnauthorized
	}

	revoked, err := h.Revocations.IsUserRevoked(sub)
	if err != nil {
		h.Log.WithError(err).Warn("revocation check failed")
		return workflow.Caller{}, apperr.ErrUnauthorized
	}
	if revoked {
		return workflow.Caller{}, apperr.ErrUnauthorized
	}

	return workflow.Caller{ID: sub, Role: role}, nil
}

// RequireAdmin gates admin/super-admin commands.
func (h *Handler) RequireAdmin(c *gin.Context) {
	if !callerFrom(c).Role.CanAdminister() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperr.ErrForbidden.Error()})
	}
}

// RequireWorker gates worker commands.
func (h *Handler) RequireWorker(c *gin.Context) {
	if !callerFrom(c).Role.CanWork() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperr.ErrForbidden.Error()})
	}
}

// RequireSuperAdmin gates role management.
func (h *Handler) RequireSuperAdmin(c *gin.Context) {
	if !callerFrom(c).Role.CanManageRoles() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperr.ErrForbidden.Error()})
	}
}

func callerFrom(c *gin.Context) workflow.Caller {
	caller, _ := c.Get(callerContextKey)
	id, _ := caller.(workflow.Caller)
	return id
}
