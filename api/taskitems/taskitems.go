package taskitems

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/api"
	"github.com/redasGoluenko/Errando/database/auditlog"
	store "github.com/redasGoluenko/Errando/database/taskitems"
)

type createRequest struct {
	TaskID      uint   `json:"taskId"`
	Description string `json:"description"`
	Status      string `json:"status"`
	IsCompleted bool   `json:"isCompleted"`
}

type updateRequest struct {
	ID          *uint   `json:"id"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	IsCompleted *bool   `json:"isCompleted"`
}

// List GET /api/taskitems?taskId=
func List(c *gin.Context) {
	taskID, ok := api.QueryID(c, "taskId")
	if !ok {
		return
	}
	items, err := store.ListByTask(c.Request.Context(), api.GetActor(c), taskID)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, items)
}

// Get GET /api/taskitems/:id
func Get(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	item, err := store.Get(c.Request.Context(), api.GetActor(c), id)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, item)
}

// Create POST /api/taskitems
func Create(c *gin.Context) {
	var req createRequest
	if !api.BindJSON(c, &req) {
		return
	}
	actor := api.GetActor(c)
	item, err := store.Create(c.Request.Context(), actor, store.NewTaskItem{
		TaskID:      req.TaskID,
		Description: req.Description,
		Status:      req.Status,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("create task item %d on task %d", item.ID, item.TaskID), "info")
	api.RespondCreated(c, fmt.Sprintf("/api/taskitems/%d", item.ID), item)
}

// Update PUT|PATCH /api/taskitems/:id
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
	item, err := store.Update(c.Request.Context(), actor, id, store.Patch{
		Description: req.Description,
		Status:      req.Status,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("update task item %d", id), "info")
	api.RespondSuccess(c, item)
}

// Complete PATCH /api/taskitems/:id/complete
func Complete(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	item, err := store.Complete(c.Request.Context(), api.GetActor(c), id)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, item)
}

// Reopen PATCH /api/taskitems/:id/reopen
func Reopen(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	item, err := store.Reopen(c.Request.Context(), api.GetActor(c), id)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, item)
}

// Delete DELETE /api/taskitems/:id
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
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("delete task item %d", id), "warn")
	api.RespondSuccessMessage(c, "Task item deleted", nil)
}
