package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/auditlog"
	"github.com/redasGoluenko/Errando/utils/token"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      interface{} `json:"user"`
}

// Login exchanges a username and password for a bearer token. Each token is
// backed by a session row so it can be revoked.
func Login(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var data LoginRequest
		if err := c.ShouldBindJSON(&data); err != nil {
			RespondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		user, ok := accounts.CheckPassword(c.Request.Context(), data.Username, data.Password)
		if !ok {
			RespondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		session, err := accounts.CreateSession(user.ID, time.Now().Add(issuer.TTL()), c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		signed, expires, err := issuer.Issue(user, session)
		if err != nil {
			_ = accounts.DeleteSession(session)
			RespondServiceError(c, err)
			return
		}
		auditlog.Log(c.ClientIP(), user.ID, "logged in", "login")
		RespondSuccess(c, LoginResponse{Token: signed, ExpiresAt: expires, User: user})
	}
}
