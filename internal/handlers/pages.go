package handlers

import (
	"net/http"

	"rayenna-crm/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Me reports whether the caller has a session, and as whom.
func Me(c *gin.Context) {
	_, _, ok := middleware.SessionUser(c)
	render(c, http.StatusOK, gin.H{"isAuthed": ok})
}
