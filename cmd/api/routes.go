package main

import (
	"mango/internal/auth"
	"mango/internal/httpapi"
	"mango/internal/tasks"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, identify gin.HandlerFunc) {
	r.GET("/healthz", h.Healthz)
	r.POST("/login", h.Login)

	// All routes resolve identity the same way: explicit account query
	// param first, bearer token second, public-only scope otherwise.
	api := r.Group("/")
	api.Use(identify)
	{
		api.GET("/records", h.ListRecords)
		api.GET("/records/public", h.ListPublicRecords)
		api.GET("/records/unassigned", h.ListUnassignedRecords)
		api.GET("/records/summary", h.Summary)
		api.GET("/records/:uuid", h.GetRecord)
		api.POST("/records", h.CreateRecord)
		api.POST("/records/:uuid/assign", h.AssignRecord)
		api.DELETE("/records/:uuid", auth.RequireAccount(), h.DeleteRecord)

		api.GET("/tasks", h.ListTasks)
		api.GET("/tasks/now", h.ListTasksByStatus(tasks.StatusNow))
		api.GET("/tasks/later", h.ListTasksByStatus(tasks.StatusLater))
		api.GET("/tasks/done", h.ListTasksByStatus(tasks.StatusDone))
		api.GET("/tasks/unassigned", h.ListUnassignedTasks)
		api.GET("/tasks/:uuid", h.GetTask)
		api.POST("/tasks", h.CreateTask)
		api.POST("/tasks/:uuid/assign", h.AssignTask)
		api.PATCH("/tasks/:uuid", h.PatchTask)
		api.DELETE("/tasks/:uuid", auth.RequireAccount(), h.DeleteTask)

		api.GET("/events", h.ListEvents)

		api.POST("/accounts", h.CreateAccount)
		api.GET("/accounts/:uuid", h.GetAccount)
		api.DELETE("/accounts/:uuid", auth.RequireAccount(), h.DeleteAccount)

		api.POST("/orgs", h.CreateOrg)
		api.GET("/orgs/:account/members", h.OrgMembers)
		api.POST("/orgs/:account/members", auth.RequireAccount(), h.AddOrgMember)
		api.DELETE("/orgs/:account/members/:member", auth.RequireAccount(), h.RemoveOrgMember)
	}
}
