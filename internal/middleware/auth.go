package middleware

import (
	"net/http"

	"rayenna-crm/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		userID := sess.Get("user_id")
		if userID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := sessions.Default(c)
		roleStr, ok := sess.Get("role").(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		role := models.UserRole(roleStr)

		if _, ok := roleSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// SessionUser returns the id and role stored at login.
func SessionUser(c *gin.Context) (uint, models.UserRole, bool) {
	sess := sessions.Default(c)
	uid, ok := sess.Get("user_id").(uint)
	if !ok || uid == 0 {
		return 0, "", false
	}
	roleStr, _ := sess.Get("role").(string)
	return uid, models.UserRole(roleStr), true
}
