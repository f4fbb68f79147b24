package tasks

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/api"
	"github.com/redasGoluenko/Errando/database/auditlog"
	store "github.com/redasGoluenko/Errando/database/tasks"
)

type createRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Status        string    `json:"status"`
	// only honoured for admins
	ClientID uint `json:"clientId"`
}

type updateRequest struct {
	ID            *uint      `json:"id"`
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	Status        *string    `json:"status"`
	ClientID      *uint      `json:"clientId"`
}

// List GET /api/tasks?status=&unassigned=true
func List(c *gin.Context) {
	opts := store.ListOptions{
		Status:     c.Query("status"),
		Unassigned: c.Query("unassigned") == "true",
	}
	views, err := store.List(c.Request.Context(), api.GetActor(c), opts)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, views)
}

// Get GET /api/tasks/:id
func Get(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	view, err := store.Get(c.Request.Context(), api.GetActor(c), id)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, view)
}

// Create POST /api/tasks
func Create(c *gin.Context) {
	var req createRequest
	if !api.BindJSON(c, &req) {
		return
	}
	actor := api.GetActor(c)
	view, err := store.Create(c.Request.Context(), actor, store.NewTask{
		Title:         req.Title,
		Description:   req.Description,
		ScheduledTime: req.ScheduledTime,
		Status:        req.Status,
		ClientID:      req.ClientID,
	})
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("create task %d", view.ID), "info")
	api.RespondCreated(c, fmt.Sprintf("/api/tasks/%d", view.ID), view)
}

// Update PUT|PATCH /api/tasks/:id
func Update(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	var req updateRequest
	if !api.BindJSON(c, &req) || !api.MatchBodyID(c, id, req.ID) {
		return
	}
	actor := api.GetActor(c)
	view, err := store.Update(c.Request.Context(), actor, id, store.Patch{
		Title:         req.Title,
		Description:   req.Description,
		ScheduledTime: req.ScheduledTime,
		Status:        req.Status,
		ClientID:      req.ClientID,
	})
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("update task %d", id), "info")
	api.RespondSuccess(c, view)
}

// Delete DELETE /api/tasks/:id
func Delete(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	actor := api.GetActor(c)
	if err := store.Delete(c.Request.Context(), actor, id); err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("delete task %d", id), "warn")
	api.RespondSuccessMessage(c, "Task deleted", nil)
}

// Assign PATCH /api/tasks/:id/assign
func Assign(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	actor := api.GetActor(c)
	view, err := store.Assign(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("assign task %d", id), "info")
	api.RespondSuccess(c, view)
}

// Unassign PATCH /api/tasks/:id/unassign
func Unassign(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	actor := api.GetActor(c)
	view, err := store.Unassign(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("unassign task %d", id), "info")
	api.RespondSuccess(c, view)
}
