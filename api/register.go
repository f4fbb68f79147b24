package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/auditlog"
	"github.com/redasGoluenko/Errando/database/config"
	"github.com/redasGoluenko/Errando/database/models"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Role is Client or Runner; empty registers a Client.
	Role string `json:"role"`
}

// ParseRoleField parses an optional role name from a request body.
func ParseRoleField(name string) (models.Role, error) {
	if name == "" {
		return models.RoleInvalid, nil
	}
	return models.ParseRole(name)
}

// Register creates a Client or Runner account while registration is open.
func Register(c *gin.Context) {
	cfg, err := config.Get()
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if !cfg.AllowRegistration {
		RespondError(c, http.StatusForbidden, "Registration is disabled")
		return
	}
	var req RegisterRequest
	if !BindJSON(c, &req) {
		return
	}
	role, err := ParseRoleField(req.Role)
	if err != nil {
		RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := accounts.Register(c.Request.Context(), accounts.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), user.ID, "registered as "+user.Role.String(), "info")
	RespondCreated(c, fmt.Sprintf("/api/users/%d", user.ID), user)
}
