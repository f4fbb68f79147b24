package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/redasGoluenko/Errando/access"
	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/redasGoluenko/Errando/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := dbcore.OpenInMemory()
	require.NoError(t, err)
	dbcore.SetDBInstance(db)
	return db
}

func mustCreate(t *testing.T, username string, role models.Role) models.User {
	u, err := createUser(context.Background(), NewUser{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func actorOf(u models.User) access.Actor {
	return access.Actor{ID: u.ID, Role: u.Role}
}

func strPtr(s string) *string { return &s }

func TestRegister(t *testing.T) {
	setupDB(t)
	ctx := context.Background()

	u, err := Register(ctx, NewUser{Username: " alice ", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, models.RoleClient, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.Equal(t, uint(1), u.Version)

	r, err := Register(ctx, NewUser{Username: "bob", Email: "bob@example.com", Password: "secret1", Role: models.RoleRunner})
	require.NoError(t, err)
	assert.Equal(t, models.RoleRunner, r.Role)

	_, err = Register(ctx, NewUser{Username: "mallory", Email: "m@example.com", Password: "secret1", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = Register(ctx, NewUser{Username: "alice", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	tests := []struct {
		name string
		in   NewUser
	}{
		{"empty username", NewUser{Username: "  ", Email: "a@example.com", Password: "secret1"}},
		{"long username", NewUser{Username: string(long), Email: "a@example.com", Password: "secret1"}},
		{"bad email", NewUser{Username: "a", Email: "not-an-email", Password: "secret1"}},
		{"display-name email", NewUser{Username: "a", Email: "A <a@example.com>", Password: "secret1"}},
		{"short password", NewUser{Username: "a", Email: "a@example.com", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Register(ctx, tt.in)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	setupDB(t)
	u := mustCreate(t, "alice", models.RoleClient)

	got, ok := CheckPassword(context.Background(), "alice", "password")
	assert.True(t, ok)
	assert.Equal(t, u.ID, got.ID)

	_, ok = CheckPassword(context.Background(), "alice", "wrong")
	assert.False(t, ok)
	_, ok = CheckPassword(context.Background(), "nobody", "password")
	assert.False(t, ok)
}

func TestCreateUserAdminOnly(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := mustCreate(t, "admin", models.RoleAdmin)
	client := mustCreate(t, "client", models.RoleClient)

	u, err := CreateUser(ctx, actorOf(admin), NewUser{Username: "boss", Email: "boss@example.com", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = CreateUser(ctx, actorOf(client), NewUser{Username: "x", Email: "x@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = CreateUser(ctx, access.Actor{}, NewUser{Username: "y", Email: "y@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestGetAndListUsers(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := mustCreate(t, "admin", models.RoleAdmin)
	a := mustCreate(t, "a", models.RoleClient)
	b := mustCreate(t, "b", models.RoleRunner)

	got, err := GetUser(ctx, actorOf(a), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Username)

	_, err = GetUser(ctx, actorOf(a), b.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = GetUser(ctx, actorOf(admin), 999)
	assert.ErrorIs(t, err, common.ErrNotFound)

	all, err := ListUsers(ctx, actorOf(admin))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err := ListUsers(ctx, actorOf(b))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, b.ID, own[0].ID)
}

func TestUpdateUser(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := mustCreate(t, "admin", models.RoleAdmin)
	a := mustCreate(t, "a", models.RoleClient)
	b := mustCreate(t, "b", models.RoleClient)

	updated, err := UpdateUser(ctx, actorOf(a), a.ID, UserPatch{Email: strPtr("new@example.com"), Password: strPtr("newpass")})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, uint(2), updated.Version)
	_, ok := CheckPassword(ctx, "a", "newpass")
	assert.True(t, ok)

	runner := models.RoleRunner
	_, err = UpdateUser(ctx, actorOf(a), a.ID, UserPatch{Role: &runner})
	assert.ErrorIs(t, err, common.ErrForbidden)

	// same role is not a change
	client := models.RoleClient
	_, err = UpdateUser(ctx, actorOf(a), a.ID, UserPatch{Role: &client})
	assert.NoError(t, err)

	_, err = UpdateUser(ctx, actorOf(a), b.ID, UserPatch{Email: strPtr("x@example.com")})
	assert.ErrorIs(t, err, common.ErrNotFound)

	promoted, err := UpdateUser(ctx, actorOf(admin), b.ID, UserPatch{Role: &runner})
	require.NoError(t, err)
	assert.Equal(t, models.RoleRunner, promoted.Role)

	_, err = UpdateUser(ctx, actorOf(a), a.ID, UserPatch{Username: strPtr("b")})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestUpdateUserRevokesSessions(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := mustCreate(t, "admin", models.RoleAdmin)
	a := mustCreate(t, "a", models.RoleAdmin)
	b := mustCreate(t, "b", models.RoleClient)

	login := func(u models.User) string {
		sid, err := CreateSession(u.ID, time.Now().Add(time.Hour), "test", "127.0.0.1")
		require.NoError(t, err)
		return sid
	}

	// profile edits keep the account signed in
	sa, sb := login(a), login(b)
	_, err := UpdateUser(ctx, actorOf(b), b.ID, UserPatch{Email: strPtr("b2@example.com")})
	require.NoError(t, err)
	_, err = GetSession(sb)
	assert.NoError(t, err)

	// a demoted admin loses its admin tokens
	client := models.RoleClient
	_, err = UpdateUser(ctx, actorOf(admin), a.ID, UserPatch{Role: &client})
	require.NoError(t, err)
	_, err = GetSession(sa)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = UpdateUser(ctx, actorOf(b), b.ID, UserPatch{Password: strPtr("another-pass")})
	require.NoError(t, err)
	_, err = GetSession(sb)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	admin := mustCreate(t, "admin", models.RoleAdmin)
	client := mustCreate(t, "client", models.RoleClient)
	runner := mustCreate(t, "runner", models.RoleRunner)

	task := models.Task{Title: "Clean yard", Status: models.StatusPending, ClientID: client.ID, RunnerID: &runner.ID, Version: 1}
	require.NoError(t, db.Omit("Client", "Runner").Create(&task).Error)
	item := models.TaskItem{TaskID: task.ID, Description: "rake", Status: models.StatusPending, Version: 1}
	require.NoError(t, db.Create(&item).Error)
	entry := models.StatusLog{TaskItemID: item.ID, RunnerID: &runner.ID, Comment: "started", Timestamp: time.Now().UTC(), Version: 1}
	require.NoError(t, db.Omit("Runner").Create(&entry).Error)

	sid, err := CreateSession(runner.ID, time.Now().Add(time.Hour), "test", "127.0.0.1")
	require.NoError(t, err)

	// a client cannot see other accounts, so the target is hidden
	err = DeleteUser(ctx, actorOf(client), runner.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	err = DeleteUser(ctx, actorOf(client), client.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	err = DeleteUser(ctx, actorOf(admin), client.ID)
	assert.ErrorIs(t, err, common.ErrConflict)

	require.NoError(t, DeleteUser(ctx, actorOf(admin), runner.ID))

	var reloaded models.StatusLog
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Nil(t, reloaded.RunnerID)
	var reloadedTask models.Task
	require.NoError(t, db.First(&reloadedTask, task.ID).Error)
	assert.Nil(t, reloadedTask.RunnerID)

	_, err = GetSession(sid)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = DeleteUser(ctx, actorOf(admin), runner.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestForceResetPassword(t *testing.T) {
	setupDB(t)
	mustCreate(t, "alice", models.RoleClient)

	require.NoError(t, ForceResetPassword("alice", "another"))
	u, ok := CheckPassword(context.Background(), "alice", "another")
	assert.True(t, ok)
	assert.Equal(t, uint(2), u.Version)

	assert.ErrorIs(t, ForceResetPassword("nobody", "another"), common.ErrNotFound)
	assert.ErrorIs(t, ForceResetPassword("alice", "123"), common.ErrValidation)
}

func TestCreateDefaultAdminAccount(t *testing.T) {
	setupDB(t)
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_PASSWORD", "rootpass")
	t.Setenv("ADMIN_EMAIL", "")

	has, err := HasAdmin()
	require.NoError(t, err)
	assert.False(t, has)

	username, passwd, err := CreateDefaultAdminAccount()
	require.NoError(t, err)
	assert.Equal(t, "root", username)
	assert.Equal(t, "rootpass", passwd)

	u, err := GetUserByUsername("root")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "root@localhost", u.Email)

	has, err = HasAdmin()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSessions(t *testing.T) {
	setupDB(t)
	u := mustCreate(t, "alice", models.RoleClient)

	live, err := CreateSession(u.ID, time.Now().Add(time.Hour), "ua", "10.0.0.1")
	require.NoError(t, err)
	expired, err := CreateSession(u.ID, time.Now().Add(-time.Minute), "ua", "10.0.0.1")
	require.NoError(t, err)

	s, err := GetSession(live)
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.UserID)

	_, err = GetSession(expired)
	assert.ErrorIs(t, err, ErrSessionExpired)
	// expired sessions are removed on lookup
	_, err = GetSession(expired)
	assert.ErrorIs(t, err, common.ErrNotFound)

	all, err := GetAllSessions()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, DeleteSession(live))
	_, err = GetSession(live)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, DeleteSession(live), common.ErrNotFound)
}

func TestUserSessionsAndDeleteExcept(t *testing.T) {
	setupDB(t)
	a := mustCreate(t, "a", models.RoleAdmin)
	b := mustCreate(t, "b", models.RoleClient)

	keep, err := CreateSession(a.ID, time.Now().Add(time.Hour), "", "")
	require.NoError(t, err)
	other, err := CreateSession(a.ID, time.Now().Add(time.Hour), "", "")
	require.NoError(t, err)
	sb, err := CreateSession(b.ID, time.Now().Add(time.Hour), "", "")
	require.NoError(t, err)

	mine, err := GetUserSessions(a.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, s := range mine {
		assert.Equal(t, a.ID, s.UserID)
	}

	n, err := DeleteSessionsExcept(keep)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	_, err = GetSession(keep)
	assert.NoError(t, err)
	_, err = GetSession(other)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = GetSession(sb)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteUserAndAllSessions(t *testing.T) {
	setupDB(t)
	a := mustCreate(t, "a", models.RoleClient)
	b := mustCreate(t, "b", models.RoleRunner)

	sa, err := CreateSession(a.ID, time.Now().Add(time.Hour), "", "")
	require.NoError(t, err)
	sb, err := CreateSession(b.ID, time.Now().Add(time.Hour), "", "")
	require.NoError(t, err)

	require.NoError(t, DeleteUserSessions(a.ID))
	_, err = GetSession(sa)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = GetSession(sb)
	assert.NoError(t, err)

	require.NoError(t, DeleteAllSessions())
	_, err = GetSession(sb)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteExpiredSessions(t *testing.T) {
	setupDB(t)
	u := mustCreate(t, "a", models.RoleClient)
	_, err := CreateSession(u.ID, time.Now().Add(-time.Hour), "", "")
	require.NoError(t, err)
	_, err = CreateSession(u.ID, time.Now().Add(time.Hour), "", "")
	require.NoError(t, err)

	n, err := DeleteExpiredSessions(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
