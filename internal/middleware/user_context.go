package middleware

import (
	"rayenna-crm/internal/database"
	"rayenna-crm/internal/models"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "CurrentUser"

func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, _, ok := SessionUser(c); ok && database.DB != nil {
			var user models.User
			if err := database.DB.WithContext(c.Request.Context()).First(&user, uid).Error; err == nil {
				c.Set(currentUserKey, user)
			}
		}

		c.Next()
	}
}

// CurrentUser is the user loaded by InjectUser, if any.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
