package admin

import (
	"fmt"
	"net/http"

	"github.com/redasGoluenko/Errando/api"
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/auditlog"
	"github.com/redasGoluenko/Errando/database/models"

	"github.com/gin-gonic/gin"
)

// GetSessions GET /api/admin/sessions?userId=
//
// Lists live sessions, optionally of one account. current is the caller's
// own session.
func GetSessions(c *gin.Context) {
	userID, ok := api.QueryID(c, "userId")
	if !ok {
		return
	}
	var (
		ss  []models.Session
		err error
	)
	if userID != 0 {
		ss, err = accounts.GetUserSessions(userID)
	} else {
		ss, err = accounts.GetAllSessions()
	}
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "current": c.GetString(api.ContextSession), "data": ss})
}

// DeleteSession DELETE /api/admin/sessions
//
// Revokes one session. The caller's own session is ended with logout instead.
func DeleteSession(c *gin.Context) {
	var req struct {
		Session string `json:"session" binding:"required"`
	}
	if !api.BindJSON(c, &req) {
		return
	}
	if req.Session == c.GetString(api.ContextSession) {
		api.RespondError(c, http.StatusBadRequest, "Use logout to end the current session")
		return
	}
	if err := accounts.DeleteSession(req.Session); err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), api.GetActor(c).ID, "delete session "+req.Session, "info")
	api.RespondSuccessMessage(c, "Session deleted", nil)
}

// DeleteAllSession DELETE /api/admin/sessions/all
//
// Revokes every session except the caller's.
func DeleteAllSession(c *gin.Context) {
	n, err := accounts.DeleteSessionsExcept(c.GetString(api.ContextSession))
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), api.GetActor(c).ID, fmt.Sprintf("delete %d other sessions", n), "warn")
	api.RespondSuccessMessage(c, fmt.Sprintf("%d sessions deleted", n), gin.H{"deleted": n})
}
