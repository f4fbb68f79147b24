package dbcore

import (
	"errors"
	"testing"
	"time"

	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seed(t *testing.T) (*gorm.DB, models.User, models.User, models.Task, models.TaskItem, models.StatusLog) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	client := models.User{Username: "client", Email: "c@example.com", PasswordHash: "x", Role: models.RoleClient, Version: 1}
	runner := models.User{Username: "runner", Email: "r@example.com", PasswordHash: "x", Role: models.RoleRunner, Version: 1}
	require.NoError(t, db.Create(&client).Error)
	require.NoError(t, db.Create(&runner).Error)

	task := models.Task{Title: "t", Status: models.StatusPending, ClientID: client.ID, RunnerID: &runner.ID, Version: 1}
	require.NoError(t, db.Omit("Client", "Runner").Create(&task).Error)
	item := models.TaskItem{TaskID: task.ID, Description: "i", Status: models.StatusPending, Version: 1}
	require.NoError(t, db.Create(&item).Error)
	entry := models.StatusLog{TaskItemID: item.ID, RunnerID: &runner.ID, Timestamp: time.Now().UTC(), Version: 1}
	require.NoError(t, db.Omit("Runner").Create(&entry).Error)
	return db, client, runner, task, item, entry
}

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	for _, m := range []interface{}{&models.User{}, &models.Task{}, &models.TaskItem{}, &models.StatusLog{}, &models.Config{}, &models.Log{}, &models.Session{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}

	u := models.User{Username: "client", Email: "c@example.com", PasswordHash: "x", Role: models.RoleClient}
	require.NoError(t, db.Create(&u).Error)
	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	assert.Equal(t, models.RoleClient, got.Role)
	assert.Equal(t, uint(1), got.Version)

	// each call is a fresh database
	other, err := OpenInMemory()
	require.NoError(t, err)
	var n int64
	require.NoError(t, other.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCompareAndSwap(t *testing.T) {
	db, _, _, task, _, _ := seed(t)

	require.NoError(t, CompareAndSwap(db, &models.Task{}, task.ID, 1, map[string]interface{}{"title": "first"}))

	err := CompareAndSwap(db, &models.Task{}, task.ID, 1, map[string]interface{}{"title": "second"})
	assert.ErrorIs(t, err, common.ErrStaleVersion)

	var got models.Task
	require.NoError(t, db.First(&got, task.ID).Error)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, uint(2), got.Version)

	err = CompareAndSwap(db, &models.Task{}, 999, 1, map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRetryOnStale(t *testing.T) {
	calls := 0
	err := RetryOnStale(func() error {
		calls++
		if calls == 1 {
			return common.ErrStaleVersion
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = RetryOnStale(func() error {
		calls++
		return common.ErrStaleVersion
	})
	assert.ErrorIs(t, err, common.ErrStaleVersion)
	assert.Equal(t, 2, calls)

	calls = 0
	boom := errors.New("boom")
	err = RetryOnStale(func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestReferentialIntegrity(t *testing.T) {
	t.Run("client delete is restricted", func(t *testing.T) {
		db, client, _, _, _, _ := seed(t)
		err := db.Delete(&models.User{}, client.ID).Error
		require.Error(t, err)
		assert.True(t, IsForeignKeyViolation(err))
		assert.ErrorIs(t, Translate(err, "user"), common.ErrConflict)
	})

	t.Run("runner delete sets null", func(t *testing.T) {
		db, _, runner, task, _, entry := seed(t)
		require.NoError(t, db.Delete(&models.User{}, runner.ID).Error)

		var gotTask models.Task
		require.NoError(t, db.First(&gotTask, task.ID).Error)
		assert.Nil(t, gotTask.RunnerID)
		var gotLog models.StatusLog
		require.NoError(t, db.First(&gotLog, entry.ID).Error)
		assert.Nil(t, gotLog.RunnerID)
	})

	t.Run("task delete cascades", func(t *testing.T) {
		db, _, _, task, item, entry := seed(t)
		require.NoError(t, db.Delete(&models.Task{}, task.ID).Error)

		var n int64
		require.NoError(t, db.Model(&models.TaskItem{}).Where("id = ?", item.ID).Count(&n).Error)
		assert.Zero(t, n)
		require.NoError(t, db.Model(&models.StatusLog{}).Where("id = ?", entry.ID).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("duplicate username", func(t *testing.T) {
		db, _, _, _, _, _ := seed(t)
		err := db.Create(&models.User{Username: "client", Email: "x@example.com", PasswordHash: "x", Role: models.RoleClient, Version: 1}).Error
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
		assert.ErrorIs(t, Translate(err, "user client"), common.ErrConflict)
	})

	t.Run("missing parent", func(t *testing.T) {
		db, _, _, _, _, _ := seed(t)
		err := db.Create(&models.TaskItem{TaskID: 999, Description: "orphan", Status: models.StatusPending, Version: 1}).Error
		require.Error(t, err)
		assert.True(t, IsForeignKeyViolation(err))
	})
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil, "x"))
	assert.ErrorIs(t, Translate(gorm.ErrRecordNotFound, "task 3"), common.ErrNotFound)

	wrapped := Translate(common.ErrForbidden, "task 3")
	assert.Equal(t, common.ErrForbidden, wrapped)

	other := errors.New("disk full")
	assert.ErrorIs(t, Translate(other, "task"), other)
	assert.Contains(t, Translate(other, "task").Error(), "task")
}
