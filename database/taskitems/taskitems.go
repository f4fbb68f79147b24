// Package taskitems manages the sub-units of work inside a task. Access
// follows the parent task: its client edits items, and whoever may read the
// task may read them.
package taskitems

import (
	"context"
	"fmt"
	"strings"

	"github.com/redasGoluenko/Errando/access"
	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/redasGoluenko/Errando/database/models"
	"github.com/redasGoluenko/Errando/database/tasks"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewTaskItem is the input for Create.
type NewTaskItem struct {
	TaskID      uint
	Description string
	Status      string
	IsCompleted bool
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Description *string
	Status      *string
	IsCompleted *bool
}

func validateDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", fmt.Errorf("%w: description is required", common.ErrValidation)
	}
	return desc, nil
}

// Load fetches an item and its parent task, without any access check.
func Load(db *gorm.DB, id uint) (models.TaskItem, models.Task, error) {
	var item models.TaskItem
	if err := db.First(&item, id).Error; err != nil {
		return models.TaskItem{}, models.Task{}, dbcore.Translate(err, fmt.Sprintf("task item %d", id))
	}
	task, err := tasks.Load(db, item.TaskID)
	if err != nil {
		return models.TaskItem{}, models.Task{}, err
	}
	return item, task, nil
}

// Create adds an item to a task owned by the actor.
func Create(ctx context.Context, actor access.Actor, in NewTaskItem) (models.TaskItem, error) {
	if !actor.Authenticated() {
		return models.TaskItem{}, common.ErrUnauthenticated
	}
	desc, err := validateDescription(in.Description)
	if err != nil {
		return models.TaskItem{}, err
	}
	status := models.StatusPending
	if in.IsCompleted {
		status = models.StatusCompleted
	}
	if in.Status != "" {
		if status, err = tasks.ValidateStatus(in.Status); err != nil {
			return models.TaskItem{}, err
		}
	}
	if in.TaskID == 0 {
		return models.TaskItem{}, fmt.Errorf("%w: taskId is required", common.ErrValidation)
	}

	db := dbcore.GetDBInstance().WithContext(ctx)
	task, err := tasks.Load(db, in.TaskID)
	if err != nil {
		return models.TaskItem{}, err
	}
	if err := access.Check(actor, access.Create, access.TaskItemResource(0, &task)); err != nil {
		return models.TaskItem{}, err
	}
	item := models.TaskItem{
		TaskID:      task.ID,
		Description: desc,
		Status:      status,
		IsCompleted: in.IsCompleted,
		Version:     1,
	}
	if err := db.Omit(clause.Associations).Create(&item).Error; err != nil {
		return models.TaskItem{}, dbcore.Translate(err, "task item")
	}
	return item, nil
}

// Get returns an item the actor may read.
func Get(ctx context.Context, actor access.Actor, id uint) (models.TaskItem, error) {
	if !actor.Authenticated() {
		return models.TaskItem{}, common.ErrUnauthenticated
	}
	item, task, err := Load(dbcore.GetDBInstance().WithContext(ctx), id)
	if err != nil {
		return models.TaskItem{}, err
	}
	if err := access.Check(actor, access.Read, access.TaskItemResource(item.ID, &task)); err != nil {
		return models.TaskItem{}, err
	}
	return item, nil
}

// ListByTask returns the items of a task in creation order. A zero taskID
// lists every item the actor may read.
func ListByTask(ctx context.Context, actor access.Actor, taskID uint) ([]models.TaskItem, error) {
	if !actor.Authenticated() {
		return nil, common.ErrUnauthenticated
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	items := []models.TaskItem{}
	if taskID != 0 {
		task, err := tasks.Load(db, taskID)
		if err != nil {
			return nil, err
		}
		if err := access.Check(actor, access.Read, access.TaskResource(&task)); err != nil {
			return nil, err
		}
		if err := db.Where("task_id = ?", task.ID).Order("id").Find(&items).Error; err != nil {
			return nil, err
		}
		return items, nil
	}

	q, err := tasks.Scoped(db.Model(&models.TaskItem{}).
		Joins("JOIN tasks ON tasks.id = task_items.task_id"), actor)
	if err != nil {
		return nil, err
	}
	if err := q.Select("task_items.*").Order("task_items.id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies a partial update to an item of a task owned by the actor.
func Update(ctx context.Context, actor access.Actor, id uint, p Patch) (models.TaskItem, error) {
	if !actor.Authenticated() {
		return models.TaskItem{}, common.ErrUnauthenticated
	}
	updates := map[string]interface{}{}
	if p.Description != nil {
		desc, err := validateDescription(*p.Description)
		if err != nil {
			return models.TaskItem{}, err
		}
		updates["description"] = desc
	}
	if p.Status != nil {
		status, err := tasks.ValidateStatus(*p.Status)
		if err != nil {
			return models.TaskItem{}, err
		}
		updates["status"] = status
	}
	if p.IsCompleted != nil {
		updates["is_completed"] = *p.IsCompleted
	}

	db := dbcore.GetDBInstance().WithContext(ctx)
	err := dbcore.RetryOnStale(func() error {
		item, task, err := Load(db, id)
		if err != nil {
			return err
		}
		if err := access.Check(actor, access.Update, access.TaskItemResource(item.ID, &task)); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return dbcore.Translate(
			dbcore.CompareAndSwap(db, &models.TaskItem{}, item.ID, item.Version, updates),
			fmt.Sprintf("task item %d", item.ID))
	})
	if err != nil {
		return models.TaskItem{}, err
	}
	item, _, err := Load(db, id)
	return item, err
}

// Complete marks an item completed.
func Complete(ctx context.Context, actor access.Actor, id uint) (models.TaskItem, error) {
	done, status := true, models.StatusCompleted
	return Update(ctx, actor, id, Patch{IsCompleted: &done, Status: &status})
}

// Reopen marks a completed item pending again.
func Reopen(ctx context.Context, actor access.Actor, id uint) (models.TaskItem, error) {
	done, status := false, models.StatusPending
	return Update(ctx, actor, id, Patch{IsCompleted: &done, Status: &status})
}

// Delete removes an item and its status logs.
func Delete(ctx context.Context, actor access.Actor, id uint) error {
	if !actor.Authenticated() {
		return common.ErrUnauthenticated
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	item, task, err := Load(db, id)
	if err != nil {
		return err
	}
	if err := access.Check(actor, access.Delete, access.TaskItemResource(item.ID, &task)); err != nil {
		return err
	}
	result := db.Delete(&models.TaskItem{}, item.ID)
	if result.Error != nil {
		return dbcore.Translate(result.Error, fmt.Sprintf("task item %d", item.ID))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: task item %d", common.ErrNotFound, item.ID)
	}
	return nil
}
