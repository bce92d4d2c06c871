package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qehclinic/portal-backend/internal/roles"
	"github.com/qehclinic/portal-backend/pkg/metrics"
)

const roleKey = "role"

// RoleFromContext returns the role resolved for the current request.
// Requests that never passed through AuthMiddleware/RequireRole resolve to
// Public, matching the claim-resolution fallback.
func RoleFromContext(c *gin.Context) roles.Role {
	if v, ok := c.Get(roleKey); ok {
		if r, ok2 := v.(roles.Role); ok2 {
			return r
		}
	}
	if v, ok := c.Get("claims"); ok {
		if cm, ok2 := v.(map[string]interface{}); ok2 {
			return roles.FromClaims(cm)
		}
	}
	return roles.Public
}

// RequireRole gates a route on the role claim of the verified token.
// The resolved role is stored in the request context so handlers never read
// any shared session state. Role mismatches abort with 403 and an
// access-denied body mirroring the admin screens.
func RequireRole(allowed ...roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleFromContext(c)
		c.Set(roleKey, role)
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		metrics.AccessDenied.WithLabelValues(role.String()).Inc()
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied", "role": role.String()})
	}
}

// RequireAdmin is shorthand for the master/officer allow-list used by most
// admin surfaces.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(roles.AdminRoles...)
}
