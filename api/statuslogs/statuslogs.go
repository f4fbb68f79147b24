package statuslogs

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/api"
	"github.com/redasGoluenko/Errando/database/auditlog"
	store "github.com/redasGoluenko/Errando/database/statuslogs"
)

type createRequest struct {
	TaskItemID uint   `json:"taskItemId"`
	RunnerID   *uint  `json:"runnerId"`
	Status     string `json:"status"`
	Comment    string `json:"comment"`
}

type updateRequest struct {
	ID         *uint   `json:"id"`
	TaskItemID *uint   `json:"taskItemId"`
	Status     *string `json:"status"`
	Comment    *string `json:"comment"`
}

// List GET /api/statuslogs?taskItemId=
func List(c *gin.Context) {
	itemID, ok := api.QueryID(c, "taskItemId")
	if !ok {
		return
	}
	logs, err := store.ListByTaskItem(c.Request.Context(), api.GetActor(c), itemID)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, logs)
}

// Get GET /api/statuslogs/:id
func Get(c *gin.Context) {
	id, ok := api.PathID(c, "id")
	if !ok {
		return
	}
	entry, err := store.Get(c.Request.Context(), api.GetActor(c), id)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, entry)
}

// Create POST /api/statuslogs
func Create(c *gin.Context) {
	var req createRequest
	if !api.BindJSON(c, &req) {
		return
	}
	actor := api.GetActor(c)
	entry, err := store.Create(c.Request.Context(), actor, store.NewStatusLog{
		TaskItemID: req.TaskItemID,
		RunnerID:   req.RunnerID,
		Status:     req.Status,
		Comment:    req.Comment,
	})
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("create status log %d on task item %d", entry.ID, entry.TaskItemID), "info")
	api.RespondCreated(c, fmt.Sprintf("/api/statuslogs/%d", entry.ID), entry)
}

// Update PUT|PATCH /api/statuslogs/:id
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
	entry, err := store.Update(c.Request.Context(), actor, id, store.Patch{
		TaskItemID: req.TaskItemID,
		Status:     req.Status,
		Comment:    req.Comment,
	})
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("update status log %d", id), "info")
	api.RespondSuccess(c, entry)
}

// Delete DELETE /api/statuslogs/:id
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
	auditlog.Log(c.ClientIP(), actor.ID, fmt.Sprintf("delete status log %d", id), "warn")
	api.RespondSuccessMessage(c, "Status log deleted", nil)
}
