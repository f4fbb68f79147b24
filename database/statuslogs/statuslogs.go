// Package statuslogs manages the progress trail written against task items.
//
// A log is anchored twice: through its item to the owning client, and through
// its own runnerId to the runner who wrote it.
package statuslogs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redasGoluenko/Errando/access"
	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/redasGoluenko/Errando/database/models"
	"github.com/redasGoluenko/Errando/database/taskitems"
	"github.com/redasGoluenko/Errando/database/tasks"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// View is a status log with its author's username joined in.
type View struct {
	models.StatusLog
	RunnerUsername *string `json:"runnerUsername"`
}

// NewStatusLog is the input for Create. RunnerID defaults to the calling
// runner.
type NewStatusLog struct {
	TaskItemID uint
	RunnerID   *uint
	Status     string
	Comment    string
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	TaskItemID *uint
	Status     *string
	Comment    *string
}

func newView(l models.StatusLog) View {
	v := View{StatusLog: l}
	if l.Runner != nil {
		name := l.Runner.Username
		v.RunnerUsername = &name
	}
	return v
}

func load(db *gorm.DB, id uint) (models.StatusLog, models.TaskItem, models.Task, error) {
	var entry models.StatusLog
	if err := db.Preload("Runner").First(&entry, id).Error; err != nil {
		return models.StatusLog{}, models.TaskItem{}, models.Task{}, dbcore.Translate(err, fmt.Sprintf("status log %d", id))
	}
	item, task, err := taskitems.Load(db, entry.TaskItemID)
	if err != nil {
		return models.StatusLog{}, models.TaskItem{}, models.Task{}, err
	}
	return entry, item, task, nil
}

func get(db *gorm.DB, id uint) (View, error) {
	entry, _, _, err := load(db, id)
	if err != nil {
		return View{}, err
	}
	return newView(entry), nil
}

func checkRunner(db *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: runnerId %d does not reference a user", common.ErrValidation, *id)
	}
	return nil
}

// Create writes a log against a task item. When a status is given the item
// takes it over in the same transaction, and is completed exactly when the
// status is "Completed".
func Create(ctx context.Context, actor access.Actor, in NewStatusLog) (View, error) {
	if !actor.Authenticated() {
		return View{}, common.ErrUnauthenticated
	}
	var err error
	status := strings.TrimSpace(in.Status)
	if status != "" {
		if status, err = tasks.ValidateStatus(status); err != nil {
			return View{}, err
		}
	}
	comment := strings.TrimSpace(in.Comment)
	if status == "" && comment == "" {
		return View{}, fmt.Errorf("%w: a status or a comment is required", common.ErrValidation)
	}
	if in.TaskItemID == 0 {
		return View{}, fmt.Errorf("%w: taskItemId is required", common.ErrValidation)
	}

	db := dbcore.GetDBInstance().WithContext(ctx)
	var id uint
	err = dbcore.RetryOnStale(func() error {
		item, task, err := taskitems.Load(db, in.TaskItemID)
		if err != nil {
			return err
		}
		if err := access.Check(actor, access.Create, access.StatusLogResource(nil, &task)); err != nil {
			return err
		}
		runnerID, err := access.StatusLogRunnerID(actor, in.RunnerID)
		if err != nil {
			return err
		}
		if err := checkRunner(db, runnerID); err != nil {
			return err
		}

		return db.Transaction(func(tx *gorm.DB) error {
			entry := models.StatusLog{
				TaskItemID: item.ID,
				RunnerID:   runnerID,
				Status:     status,
				Comment:    comment,
				Timestamp:  time.Now().UTC(),
				Version:    1,
			}
			if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
				return dbcore.Translate(err, "status log")
			}
			id = entry.ID
			if status == "" {
				return nil
			}
			return dbcore.CompareAndSwap(tx, &models.TaskItem{}, item.ID, item.Version, map[string]interface{}{
				"status":       status,
				"is_completed": status == models.StatusCompleted,
			})
		})
	})
	if err != nil {
		return View{}, err
	}
	return get(db, id)
}

// Get returns a log the actor may read.
func Get(ctx context.Context, actor access.Actor, id uint) (View, error) {
	if !actor.Authenticated() {
		return View{}, common.ErrUnauthenticated
	}
	entry, _, task, err := load(dbcore.GetDBInstance().WithContext(ctx), id)
	if err != nil {
		return View{}, err
	}
	if err := access.Check(actor, access.Read, access.StatusLogResource(&entry, &task)); err != nil {
		return View{}, err
	}
	return newView(entry), nil
}

func scoped(db *gorm.DB, actor access.Actor) (*gorm.DB, error) {
	switch access.ListScope(actor, access.KindStatusLog) {
	case access.ScopeAll:
		return db, nil
	case access.ScopeOwned:
		return db.Joins("JOIN task_items ON task_items.id = status_logs.task_item_id").
			Joins("JOIN tasks ON tasks.id = task_items.task_id").
			Where("tasks.client_id = ?", actor.ID), nil
	case access.ScopeAuthored:
		return db.Where("status_logs.runner_id = ?", actor.ID), nil
	default:
		return nil, common.ErrUnauthenticated
	}
}

// ListByTaskItem returns the logs of an item the actor may read, newest
// first. A runner only sees the logs it wrote. A zero taskItemID lists every
// log the actor may read.
func ListByTaskItem(ctx context.Context, actor access.Actor, taskItemID uint) ([]View, error) {
	if !actor.Authenticated() {
		return nil, common.ErrUnauthenticated
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	if taskItemID != 0 {
		_, task, err := taskitems.Load(db, taskItemID)
		if err != nil {
			return nil, err
		}
		if err := access.Check(actor, access.Read, access.TaskItemResource(taskItemID, &task)); err != nil {
			return nil, err
		}
	}
	q, err := scoped(db.Model(&models.StatusLog{}), actor)
	if err != nil {
		return nil, err
	}
	if taskItemID != 0 {
		q = q.Where("status_logs.task_item_id = ?", taskItemID)
	}
	var found []models.StatusLog
	err = q.Select("status_logs.*").Preload("Runner").
		Order("status_logs.timestamp desc").Order("status_logs.id desc").
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(found))
	for _, l := range found {
		views = append(views, newView(l))
	}
	return views, nil
}

// Update edits a log. Moving it to another item requires the right to write
// logs on that item.
func Update(ctx context.Context, actor access.Actor, id uint, p Patch) (View, error) {
	if !actor.Authenticated() {
		return View{}, common.ErrUnauthenticated
	}
	updates := map[string]interface{}{}
	if p.Status != nil {
		status := strings.TrimSpace(*p.Status)
		if status != "" {
			var err error
			if status, err = tasks.ValidateStatus(status); err != nil {
				return View{}, err
			}
		}
		updates["status"] = status
	}
	if p.Comment != nil {
		updates["comment"] = strings.TrimSpace(*p.Comment)
	}

	db := dbcore.GetDBInstance().WithContext(ctx)
	err := dbcore.RetryOnStale(func() error {
		entry, _, task, err := load(db, id)
		if err != nil {
			return err
		}
		if err := access.Check(actor, access.Update, access.StatusLogResource(&entry, &task)); err != nil {
			return err
		}
		status, comment := entry.Status, entry.Comment
		if v, ok := updates["status"]; ok {
			status = v.(string)
		}
		if v, ok := updates["comment"]; ok {
			comment = v.(string)
		}
		if status == "" && comment == "" {
			return fmt.Errorf("%w: a status or a comment is required", common.ErrValidation)
		}
		if p.TaskItemID != nil && *p.TaskItemID != entry.TaskItemID {
			_, target, err := taskitems.Load(db, *p.TaskItemID)
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("%w: taskItemId %d does not reference a task item", common.ErrValidation, *p.TaskItemID)
			}
			if err != nil {
				return err
			}
			if err := access.Check(actor, access.Create, access.StatusLogResource(nil, &target)); err != nil {
				return err
			}
			updates["task_item_id"] = *p.TaskItemID
		}
		if len(updates) == 0 {
			return nil
		}
		return dbcore.Translate(
			dbcore.CompareAndSwap(db, &models.StatusLog{}, entry.ID, entry.Version, updates),
			fmt.Sprintf("status log %d", entry.ID))
	})
	if err != nil {
		return View{}, err
	}
	return get(db, id)
}

// Delete removes a log.
func Delete(ctx context.Context, actor access.Actor, id uint) error {
	if !actor.Authenticated() {
		return common.ErrUnauthenticated
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	entry, _, task, err := load(db, id)
	if err != nil {
		return err
	}
	if err := access.Check(actor, access.Delete, access.StatusLogResource(&entry, &task)); err != nil {
		return err
	}
	result := db.Delete(&models.StatusLog{}, entry.ID)
	if result.Error != nil {
		return dbcore.Translate(result.Error, fmt.Sprintf("status log %d", entry.ID))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: status log %d", common.ErrNotFound, entry.ID)
	}
	return nil
}
