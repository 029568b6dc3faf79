package handlers

import (
	"net/http"
	"strings"

	"rayenna-crm/internal/database"
	"rayenna-crm/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

func Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		renderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Password) < 6 {
		renderError(c, http.StatusBadRequest, "username or password too short")
		return
	}

	role := models.UserRole(req.Role)

	// admin and management accounts are provisioned, never self-registered
	switch role {
	case models.RoleSales, models.RoleOperations, models.RoleFinance:
	default:
		renderError(c, http.StatusBadRequest, "invalid role")
		return
	}

	var count int64
	if err := database.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("failed to check username")
		renderError(c, http.StatusInternalServerError, "failed to register user")
		return
	}
	if count > 0 {
		renderError(c, http.StatusConflict, "user already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		renderError(c, http.StatusInternalServerError, "failed to register user")
		return
	}
	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		log.Error().Err(err).Msg("failed to create user")
		renderError(c, http.StatusInternalServerError, "failed to register user")
		return
	}

	database.CreateAuditLog(user.ID, "user", user.ID, "create", "registered as "+string(user.Role))

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		renderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.User
	if err := database.DB.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		renderError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		renderError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	sess.Set("role", string(user.Role))
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save session")
		renderError(c, http.StatusInternalServerError, "failed to start session")
		return
	}

	c.JSON(http.StatusOK, user)
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Status(http.StatusNoContent)
}
