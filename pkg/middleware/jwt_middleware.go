package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"saasbase/pkg/auth"
	"saasbase/pkg/utils"
)

func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("permissions", claims.Permissions)
		c.Next()
	}
}

// ClaimFromContext rebuilds the caller's role claim set by JWTAuthMiddleware.
// Unauthenticated requests yield an anonymous claim.
func ClaimFromContext(c *gin.Context) *auth.Claim {
	role := c.GetString("role")
	if role == "" {
		return auth.Anonymous()
	}
	perms, _ := c.Get("permissions")
	patterns, _ := perms.([]string)
	return auth.NewClaim(role, patterns)
}

// RequireAtLeast rejects callers ranked below the given role.
func RequireAtLeast(roleID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ClaimFromContext(c).AtLeast(roleID) {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission rejects callers whose role holds no matching permission
// pattern.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ClaimFromContext(c).HasPermission(permission) {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
