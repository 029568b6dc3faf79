package handlers

import (
	"net/http"
	"strconv"

	"rayenna-crm/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	// amounts go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// render writes data as JSON and attaches the user loaded by
// middleware.InjectUser.
func render(c *gin.Context, status int, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if u, ok := middleware.CurrentUser(c); ok {
		data["currentUser"] = gin.H{"id": u.ID, "username": u.Username, "role": u.Role}
	}
	c.JSON(status, data)
}

func renderError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		renderError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
