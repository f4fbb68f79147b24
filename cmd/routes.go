package cmd

import (
	"github.com/redasGoluenko/Errando/api"
	"github.com/redasGoluenko/Errando/api/admin"
	logapi "github.com/redasGoluenko/Errando/api/admin/log"
	"github.com/redasGoluenko/Errando/api/statuslogs"
	"github.com/redasGoluenko/Errando/api/taskitems"
	"github.com/redasGoluenko/Errando/api/tasks"
	"github.com/redasGoluenko/Errando/api/users"
	"github.com/redasGoluenko/Errando/utils/token"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint on r.
func SetupRoutes(r *gin.Engine, issuer *token.Issuer) {
	r.Any("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	r.POST("/api/users/register", api.Register)
	r.POST("/api/users/login", api.Login(issuer))

	authorized := r.Group("/api", api.TokenAuthMiddleware(issuer))
	{
		authorized.POST("/users/logout", api.Logout)
		authorized.GET("/me", api.GetMe)

		// users
		authorized.GET("/users", users.List)
		authorized.POST("/users", users.Create)
		authorized.GET("/users/:id", users.Get)
		authorized.PUT("/users/:id", users.Update)
		authorized.PATCH("/users/:id", users.Update)
		authorized.DELETE("/users/:id", users.Delete)

		// tasks
		authorized.GET("/tasks", tasks.List)
		authorized.POST("/tasks", tasks.Create)
		authorized.GET("/tasks/:id", tasks.Get)
		authorized.PUT("/tasks/:id", tasks.Update)
		authorized.PATCH("/tasks/:id", tasks.Update)
		authorized.DELETE("/tasks/:id", tasks.Delete)
		authorized.PATCH("/tasks/:id/assign", tasks.Assign)
		authorized.PATCH("/tasks/:id/unassign", tasks.Unassign)

		// task items
		authorized.GET("/taskitems", taskitems.List)
		authorized.POST("/taskitems", taskitems.Create)
		authorized.GET("/taskitems/:id", taskitems.Get)
		authorized.PUT("/taskitems/:id", taskitems.Update)
		authorized.PATCH("/taskitems/:id", taskitems.Update)
		authorized.DELETE("/taskitems/:id", taskitems.Delete)
		authorized.PATCH("/taskitems/:id/complete", taskitems.Complete)
		authorized.PATCH("/taskitems/:id/reopen", taskitems.Reopen)
		authorized.PATCH("/taskitems/:id/incomplete", taskitems.Reopen)

		// status logs
		authorized.GET("/statuslogs", statuslogs.List)
		authorized.POST("/statuslogs", statuslogs.Create)
		authorized.GET("/statuslogs/:id", statuslogs.Get)
		authorized.PUT("/statuslogs/:id", statuslogs.Update)
		authorized.PATCH("/statuslogs/:id", statuslogs.Update)
		authorized.DELETE("/statuslogs/:id", statuslogs.Delete)
	}

	adminAuthorized := authorized.Group("/admin", api.AdminAuthMiddleware())
	{
		adminAuthorized.GET("/sessions", admin.GetSessions)
		adminAuthorized.DELETE("/sessions", admin.DeleteSession)
		adminAuthorized.DELETE("/sessions/all", admin.DeleteAllSession)
		adminAuthorized.GET("/logs", logapi.GetLogs)
		adminAuthorized.GET("/settings", admin.GetSettings)
		adminAuthorized.POST("/settings", admin.EditSettings)
	}
}
