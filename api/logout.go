package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/auditlog"
)

// Logout revokes the session behind the current token.
func Logout(c *gin.Context) {
	session := c.GetString(ContextSession)
	if err := accounts.DeleteSession(session); err != nil {
		RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), GetActor(c).ID, "logged out", "logout")
	RespondSuccessMessage(c, "Logged out", nil)
}
