package tasks

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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxTitleLength  = 200
	maxStatusLength = 50
)

// View is a task as returned to callers, with the usernames of its client
// and runner joined in.
type View struct {
	models.Task
	ClientUsername string  `json:"clientUsername"`
	RunnerUsername *string `json:"runnerUsername"`
}

// NewTask is the input for Create. ClientID is only honoured for admins.
type NewTask struct {
	Title         string
	Description   string
	ScheduledTime time.Time
	Status        string
	ClientID      uint
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title         *string
	Description   *string
	ScheduledTime *time.Time
	Status        *string
	// ClientID moves the task to another client. Admin only; ignored for others.
	ClientID *uint
}

// ListOptions narrows List. Zero values mean no filter.
type ListOptions struct {
	Status     string
	Unassigned bool
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > maxTitleLength {
		return "", fmt.Errorf("%w: title must be between 1 and %d characters", common.ErrValidation, maxTitleLength)
	}
	return title, nil
}

// ValidateStatus trims a free-text status and checks its length.
func ValidateStatus(status string) (string, error) {
	status = strings.TrimSpace(status)
	if status == "" || len([]rune(status)) > maxStatusLength {
		return "", fmt.Errorf("%w: status must be between 1 and %d characters", common.ErrValidation, maxStatusLength)
	}
	return status, nil
}

func newView(t models.Task) View {
	v := View{Task: t}
	if t.Client != nil {
		v.ClientUsername = t.Client.Username
	}
	if t.Runner != nil {
		name := t.Runner.Username
		v.RunnerUsername = &name
	}
	return v
}

// Load fetches a task with its client and runner, without any access check.
func Load(db *gorm.DB, id uint) (models.Task, error) {
	var task models.Task
	if err := db.Preload("Client").Preload("Runner").First(&task, id).Error; err != nil {
		return models.Task{}, dbcore.Translate(err, fmt.Sprintf("task %d", id))
	}
	return task, nil
}

// checkClient verifies that id references an existing client account.
func checkClient(db *gorm.DB, id uint) error {
	var owner models.User
	err := db.Select("id", "role").First(&owner, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: clientId %d does not reference a user", common.ErrValidation, id)
	}
	if err != nil {
		return err
	}
	if owner.Role != models.RoleClient {
		return fmt.Errorf("%w: user %d is not a client", common.ErrValidation, id)
	}
	return nil
}

// Create adds a task. A client always owns the tasks it creates; an admin
// names the owning client.
func Create(ctx context.Context, actor access.Actor, in NewTask) (View, error) {
	if err := access.Check(actor, access.Create, access.Resource{Kind: access.KindTask}); err != nil {
		return View{}, err
	}
	clientID, err := access.TaskClientID(actor, in.ClientID)
	if err != nil {
		return View{}, err
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return View{}, err
	}
	status := models.StatusPending
	if in.Status != "" {
		if status, err = ValidateStatus(in.Status); err != nil {
			return View{}, err
		}
	}

	db := dbcore.GetDBInstance().WithContext(ctx)
	if err := checkClient(db, clientID); err != nil {
		return View{}, err
	}
	task := models.Task{
		Title:         title,
		Description:   in.Description,
		ScheduledTime: in.ScheduledTime.UTC(),
		Status:        status,
		ClientID:      clientID,
		Version:       1,
	}
	if err := db.Omit(clause.Associations).Create(&task).Error; err != nil {
		return View{}, dbcore.Translate(err, "task")
	}
	created, err := Load(db, task.ID)
	if err != nil {
		return View{}, err
	}
	return newView(created), nil
}

// Get returns a task the actor may read.
func Get(ctx context.Context, actor access.Actor, id uint) (View, error) {
	if !actor.Authenticated() {
		return View{}, common.ErrUnauthenticated
	}
	task, err := Load(dbcore.GetDBInstance().WithContext(ctx), id)
	if err != nil {
		return View{}, err
	}
	if err := access.Check(actor, access.Read, access.TaskResource(&task)); err != nil {
		return View{}, err
	}
	return newView(task), nil
}

// Scoped restricts a query on tasks to the rows actor may read.
func Scoped(db *gorm.DB, actor access.Actor) (*gorm.DB, error) {
	switch access.ListScope(actor, access.KindTask) {
	case access.ScopeAll:
		return db, nil
	case access.ScopeOwned:
		return db.Where("tasks.client_id = ?", actor.ID), nil
	case access.ScopeClaimable:
		return db.Where("tasks.runner_id IS NULL OR tasks.runner_id = ?", actor.ID), nil
	default:
		return nil, common.ErrUnauthenticated
	}
}

// List returns the tasks the actor may read, oldest first.
func List(ctx context.Context, actor access.Actor, opts ListOptions) ([]View, error) {
	db, err := Scoped(dbcore.GetDBInstance().WithContext(ctx).Model(&models.Task{}), actor)
	if err != nil {
		return nil, err
	}
	if opts.Status != "" {
		db = db.Where("tasks.status = ?", opts.Status)
	}
	if opts.Unassigned {
		db = db.Where("tasks.runner_id IS NULL")
	}
	var found []models.Task
	if err := db.Preload("Client").Preload("Runner").Order("tasks.id").Find(&found).Error; err != nil {
		return nil, err
	}
	views := make([]View, 0, len(found))
	for _, t := range found {
		views = append(views, newView(t))
	}
	return views, nil
}

// Update applies a partial update to a task the actor may modify.
func Update(ctx context.Context, actor access.Actor, id uint, p Patch) (View, error) {
	if !actor.Authenticated() {
		return View{}, common.ErrUnauthenticated
	}
	updates := map[string]interface{}{}
	if p.Title != nil {
		title, err := validateTitle(*p.Title)
		if err != nil {
			return View{}, err
		}
		updates["title"] = title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.ScheduledTime != nil {
		updates["scheduled_time"] = p.ScheduledTime.UTC()
	}
	if p.Status != nil {
		status, err := ValidateStatus(*p.Status)
		if err != nil {
			return View{}, err
		}
		updates["status"] = status
	}

	db := dbcore.GetDBInstance().WithContext(ctx)
	err := dbcore.RetryOnStale(func() error {
		task, err := Load(db, id)
		if err != nil {
			return err
		}
		if err := access.Check(actor, access.Update, access.TaskResource(&task)); err != nil {
			return err
		}
		if p.ClientID != nil && actor.Role == models.RoleAdmin && *p.ClientID != task.ClientID {
			if err := checkClient(db, *p.ClientID); err != nil {
				return err
			}
			updates["client_id"] = *p.ClientID
		}
		if len(updates) == 0 {
			return nil
		}
		return dbcore.Translate(
			dbcore.CompareAndSwap(db, &models.Task{}, task.ID, task.Version, updates),
			fmt.Sprintf("task %d", task.ID))
	})
	if err != nil {
		return View{}, err
	}
	updated, err := Load(db, id)
	if err != nil {
		return View{}, err
	}
	return newView(updated), nil
}

// Delete removes a task together with its items and their status logs.
func Delete(ctx context.Context, actor access.Actor, id uint) error {
	if !actor.Authenticated() {
		return common.ErrUnauthenticated
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	task, err := Load(db, id)
	if err != nil {
		return err
	}
	if err := access.Check(actor, access.Delete, access.TaskResource(&task)); err != nil {
		return err
	}
	result := db.Delete(&models.Task{}, task.ID)
	if result.Error != nil {
		return dbcore.Translate(result.Error, fmt.Sprintf("task %d", task.ID))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: task %d", common.ErrNotFound, task.ID)
	}
	return nil
}

// Assign claims an unassigned task for the calling runner. Of two runners
// racing for the same task exactly one wins.
func Assign(ctx context.Context, actor access.Actor, id uint) (View, error) {
	return setRunner(ctx, actor, id, access.Assign)
}

// Unassign releases a claimed task. Runners may release their own claims,
// admins any claim.
func Unassign(ctx context.Context, actor access.Actor, id uint) (View, error) {
	return setRunner(ctx, actor, id, access.Unassign)
}

func setRunner(ctx context.Context, actor access.Actor, id uint, action access.Action) (View, error) {
	if !actor.Authenticated() {
		return View{}, common.ErrUnauthenticated
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	err := dbcore.RetryOnStale(func() error {
		task, err := Load(db, id)
		if err != nil {
			return err
		}
		if err := access.Check(actor, action, access.TaskResource(&task)); err != nil {
			return err
		}
		var runner interface{}
		if action == access.Assign {
			runner = actor.ID
		} else if !task.Claimed() {
			// admin releasing an unclaimed task
			return nil
		}
		return dbcore.CompareAndSwap(db, &models.Task{}, task.ID, task.Version,
			map[string]interface{}{"runner_id": runner})
	})
	if err != nil {
		return View{}, err
	}
	updated, err := Load(db, id)
	if err != nil {
		return View{}, err
	}
	return newView(updated), nil
}
