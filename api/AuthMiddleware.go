package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/models"
	"github.com/redasGoluenko/Errando/utils/token"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// TokenAuthMiddleware verifies the bearer token and its session, then
// records the actor on the context.
func TokenAuthMiddleware(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			RespondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		identity, err := issuer.Verify(raw)
		if err != nil {
			RespondError(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}
		// tokens stay valid only while their session exists
		session, err := accounts.GetSession(identity.SessionID)
		if err != nil || session.UserID != identity.UserID {
			RespondError(c, http.StatusUnauthorized, "Session expired or revoked")
			c.Abort()
			return
		}
		SetActor(c, identity.UserID, identity.Username, identity.Role, session.UUID)
		c.Next()
	}
}

// AdminAuthMiddleware lets only admins through. It must run after
// TokenAuthMiddleware.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.Authenticated() {
			RespondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		if actor.Role != models.RoleAdmin {
			RespondError(c, http.StatusForbidden, "Admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}
