package users

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/api"
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/auditlog"
	"github.com/redasGoluenko/Errando/database/models"
)

type createRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type updateRequest struct {
	ID       *uint   `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// List GET /api/users
func List(c *gin.Context) {
	list, err := accounts.ListUsers(c.Request.Context(), api.GetActor(c))
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, list)
}

// Get GET /api/users/:id
func Get(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	user, err := accounts.GetUser(c.Request.Context(), api.GetActor(c), id)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, user)
}

// Create POST /api/users
func Create(c *gin.Context) {
	var req createRequest
	if !api.BindJSON(c, &req) {
		return
	}
	role, err := api.ParseRoleField(req.Role)
	if err != nil {
		api.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	actor := api.GetActor(c)
	user, err := accounts.CreateUser(c.Request.Context(), actor, accounts.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("create user %d (%s)", user.ID, user.Role), "info")
	api.RespondCreated(c, fmt.Sprintf("/api/users/%d", user.ID), user)
}

// Update PUT|PATCH /api/users/:id
func Update(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	var req updateRequest
	if !api.BindJSON(c, &req) || !api.MatchBodyID(c, id, req.ID) {
		return
	}
	patch := accounts.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			api.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		patch.Role = &role
	}
	actor := api.GetActor(c)
	user, err := accounts.UpdateUser(c.Request.Context(), actor, id, patch)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("update user %d", id), "info")
	api.RespondSuccess(c, user)
}

// Delete DELETE /api/users/:id
func Delete(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	actor := api.GetActor(c)
	if err := accounts.DeleteUser(c.Request.Context(), actor, id); err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("delete user %d", id), "warn")
	api.RespondSuccessMessage(c, "User deleted", nil)
}
