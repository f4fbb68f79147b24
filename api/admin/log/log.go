package log

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/api"
	"github.com/redasGoluenko/Errando/database/auditlog"
)

func GetLogs(c *gin.Context) {
	limit := c.Query("limit")
	if limit == "" {
		limit = "100" // Default to 100 logs if not specified
	}
	page := c.Query("page")
	if page == "" {
		page = "1" // Default to page 1 if not specified
	}
	limitInt, err := strconv.Atoi(limit)
	if err != nil || limitInt <= 0 || limitInt > 1000 {
		api.RespondError(c, 400, "Invalid limit parameter")
		return
	}
	pageInt, err := strconv.Atoi(page)
	if err != nil || pageInt <= 0 {
		api.RespondError(c, 400, "Invalid page parameter")
		return
	}
	logs, total, err := auditlog.List(pageInt, limitInt)
	if err != nil {
		api.RespondError(c, 500, "Failed to retrieve logs: "+err.Error())
		return
	}
	api.RespondSuccess(c, gin.H{"logs": logs, "total": total})
}
