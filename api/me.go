package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/database/accounts"
)

// GetMe returns the authenticated user's own account.
func GetMe(c *gin.Context) {
	actor := GetActor(c)
	user, err := accounts.GetUser(c.Request.Context(), actor, actor.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, user)
}
