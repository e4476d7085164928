package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// RBAC admits callers whose role is listed.
func RBAC(allowed ...models.Role) gin.HandlerFunc {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}
	return requireRole(func(role models.Role) bool {
		_, ok := set[role]
		return ok
	})
}

// RequireStaff admits teachers and every administrative role.
func RequireStaff() gin.HandlerFunc {
	return requireRole(func(role models.Role) bool { return role.Info().IsStaff })
}

// RequireInviteIssuer admits roles that may manage invite codes.
func RequireInviteIssuer() gin.HandlerFunc {
	return requireRole(func(role models.Role) bool { return role.Info().CanIssueInvites })
}

func requireRole(allow func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrAuthenticationRequired)
			c.Abort()
			return
		}
		if !allow(claims.Role) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
