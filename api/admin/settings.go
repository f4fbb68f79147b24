package admin

import (
	"github.com/redasGoluenko/Errando/api"
	"github.com/redasGoluenko/Errando/database/auditlog"
	"github.com/redasGoluenko/Errando/database/config"

	"github.com/gin-gonic/gin"
)

// GetSettings 获取站点配置
func GetSettings(c *gin.Context) {
	cst, err := config.Get()
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	api.RespondSuccess(c, cst)
}

// EditSettings 更新站点配置
func EditSettings(c *gin.Context) {
	var req config.Patch
	if !api.BindJSON(c, &req) {
		return
	}
	cst, err := config.Update(req)
	if err != nil {
		api.RespondServiceError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), api.GetActor(c).ID, "update settings", "info")
	api.RespondSuccess(c, cst)
}
