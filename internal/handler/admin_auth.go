package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/config"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/model"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/observability"
)

// AdminAuthMode controls how /admin routes check ADMIN_TOKEN.
type AdminAuthMode string

const (
	AdminAuthRequired AdminAuthMode = "required"
	// AdminAuthOptional lets requests without a token through but still rejects a wrong one.
	AdminAuthOptional AdminAuthMode = "optional"
	AdminAuthDisabled AdminAuthMode = "disabled"
)

// ParseAdminAuthMode normalizes mode. Unknown values fall back to required.
func ParseAdminAuthMode(mode string) (AdminAuthMode, bool) {
	switch m := AdminAuthMode(strings.ToLower(strings.TrimSpace(mode))); m {
	case AdminAuthRequired, AdminAuthOptional, AdminAuthDisabled:
		return m, true
	case "":
		return AdminAuthRequired, true
	default:
		return AdminAuthRequired, false
	}
}

// AdminAuthMiddleware guards the export ledger and token routes.
func AdminAuthMiddleware(settings *config.Settings) gin.HandlerFunc {
	return AdminAuthMiddlewareWith(settings.AdminAuthMode, settings.AdminToken)
}

// AdminAuthMiddlewareWith builds the middleware from a raw mode and token.
func AdminAuthMiddlewareWith(mode string, expectedToken string) gin.HandlerFunc {
	authMode, known := ParseAdminAuthMode(mode)
	if !known {
		slog.Warn("unknown admin auth mode, treating as required", slog.String("mode", mode))
	}
	expected := strings.TrimSpace(expectedToken)

	return func(c *gin.Context) {
		if authMode == AdminAuthDisabled {
			c.Next()
			return
		}

		if expected == "" {
			observability.Logger(c).Error("admin route called but ADMIN_TOKEN is empty", slog.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "admin auth not configured"})
			return
		}

		provided := adminToken(c)
		if provided == "" {
			if authMode == AdminAuthOptional {
				c.Next()
				return
			}
			rejectAdmin(c, "missing admin token")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			rejectAdmin(c, "invalid admin token")
			return
		}

		c.Next()
	}
}

func rejectAdmin(c *gin.Context, reason string) {
	observability.Logger(c).Warn("admin auth rejected",
		slog.String("reason", reason),
		slog.String("path", c.FullPath()),
		slog.String("client_ip", c.ClientIP()),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: reason})
}

// adminToken reads "Authorization: Bearer <token>" or X-Admin-Token.
func adminToken(c *gin.Context) string {
	if scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(c.GetHeader("X-Admin-Token"))
}
