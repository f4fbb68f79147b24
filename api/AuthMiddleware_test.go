package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/auditlog"
	"github.com/redasGoluenko/Errando/database/models"
	"github.com/redasGoluenko/Errando/utils/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(issuer *token.Issuer) *gin.Engine {
	r := gin.New()
	authorized := r.Group("/api", TokenAuthMiddleware(issuer))
	authorized.GET("/me", GetMe)
	authorized.POST("/logout", Logout)
	authorized.GET("/admin", AdminAuthMiddleware(), func(c *gin.Context) {
		RespondSuccess(c, GetActor(c).ID)
	})
	return r
}

func login(t *testing.T, issuer *token.Issuer, user models.User) string {
	t.Helper()
	session, err := accounts.CreateSession(user.ID, time.Now().Add(time.Hour), "test", "127.0.0.1")
	require.NoError(t, err)
	raw, _, err := issuer.Issue(user, session)
	require.NoError(t, err)
	return raw
}

func TestTokenAuthMiddleware(t *testing.T) {
	issuer := setup(t)
	user := register(t, "alice", models.RoleClient)
	raw := login(t, issuer, user)
	r := newRouter(issuer)

	w := doJSON(r, "GET", "/api/me", nil, raw)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode(t, w)["data"].(map[string]interface{})["username"])

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, "GET", "/api/me", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, "GET", "/api/me", nil, "not-a-token").Code)

	other, err := token.NewIssuer(token.Config{Secret: "other-secret", Issuer: "errando"})
	require.NoError(t, err)
	forged, _, err := other.Issue(user, "whatever")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, "GET", "/api/me", nil, forged).Code)

	// signed correctly but no session behind it
	orphan, _, err := issuer.Issue(user, "missing-session")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, "GET", "/api/me", nil, orphan).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	issuer := setup(t)
	user := register(t, "alice", models.RoleClient)
	raw := login(t, issuer, user)
	r := newRouter(issuer)

	require.Equal(t, http.StatusOK, doJSON(r, "POST", "/api/logout", nil, raw).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, "GET", "/api/me", nil, raw).Code)

	logs, _, err := auditlog.List(1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, "logged out", logs[0].Message)
	assert.Equal(t, "logout", logs[0].MsgType)
	assert.Equal(t, user.ID, logs[0].UserID)
}

func TestAdminAuthMiddleware(t *testing.T) {
	issuer := setup(t)
	client := register(t, "alice", models.RoleClient)
	admin, err := accounts.CreateAdminAccount("root", "", "rootpassword")
	require.NoError(t, err)
	r := newRouter(issuer)

	assert.Equal(t, http.StatusForbidden, doJSON(r, "GET", "/api/admin", nil, login(t, issuer, client)).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, "GET", "/api/admin", nil, login(t, issuer, admin)).Code)

	bare := gin.New()
	bare.GET("/admin", AdminAuthMiddleware(), func(c *gin.Context) {})
	assert.Equal(t, http.StatusUnauthorized, doJSON(bare, "GET", "/admin", nil, "").Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("%w: task 3", common.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: task 3", common.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: title", common.ErrValidation), http.StatusBadRequest},
		{common.ErrConflict, http.StatusConflict},
		{common.ErrStaleVersion, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestPathAndQueryID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := PathID(c, "id")
		if !ok {
			return
		}
		q, ok := QueryID(c, "taskId")
		if !ok {
			return
		}
		RespondSuccess(c, []uint{id, q})
	})

	assert.Equal(t, http.StatusOK, doJSON(r, "GET", "/items/4", nil, "").Code)
	assert.Equal(t, http.StatusOK, doJSON(r, "GET", "/items/4?taskId=2", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, "GET", "/items/abc", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, "GET", "/items/0", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, "GET", "/items/4?taskId=-1", nil, "").Code)
}
