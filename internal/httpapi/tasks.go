package httpapi

import (
	"net/http"

	"mango/internal/apperr"
	"mango/internal/tasks"

	"github.com/gin-gonic/gin"
)

// ListTasks returns one page of tasks visible to the request scope.
// The status query param narrows to one state; default lists all.
func (h Handlers) ListTasks(c *gin.Context) {
	h.listTasks(c, c.DefaultQuery("status", "all"))
}

// ListTasksByStatus serves the /tasks/now|later|done shorthands.
func (h Handlers) ListTasksByStatus(status tasks.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.listTasks(c, string(status))
	}
}

func (h Handlers) listTasks(c *gin.Context, status string) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}
	page, ok := requestPage(c)
	if !ok {
		return
	}

	out, err := h.Tasks.List(c.Request.Context(), scope, status, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListUnassignedTasks lists tasks not yet attributed to an account.
func (h Handlers) ListUnassignedTasks(c *gin.Context) {
	page, ok := requestPage(c)
	if !ok {
		return
	}
	out, err := h.Tasks.ListUnassigned(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetTask(c *gin.Context) {
	task, err := h.Tasks.Get(c.Request.Context(), requestAccount(c), c.Param("uuid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h Handlers) CreateTask(c *gin.Context) {
	var t tasks.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		writeBadJSON(c)
		return
	}
	if t.Account == "" {
		t.Account = requestAccount(c)
	}

	created, err := h.Tasks.Create(c.Request.Context(), t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// PatchTask applies a whitelisted partial update.
func (h Handlers) PatchTask(c *gin.Context) {
	var p tasks.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		writeBadJSON(c)
		return
	}

	taskUUID := c.Param("uuid")
	if err := h.Tasks.Modify(c.Request.Context(), requestAccount(c), taskUUID, p); err != nil {
		writeError(c, err)
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), requestAccount(c), taskUUID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// AssignTask claims an orphaned task for the requesting account.
func (h Handlers) AssignTask(c *gin.Context) {
	account := requestAccount(c)
	if account == "" {
		writeError(c, apperr.Invalid("account", apperr.ReasonMissing))
		return
	}

	taskUUID := c.Param("uuid")
	if err := h.Tasks.SetAssigned(c.Request.Context(), account, taskUUID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": taskUUID, "accountcode": account})
}

func (h Handlers) DeleteTask(c *gin.Context) {
	taskUUID := c.Param("uuid")
	if err := h.Tasks.Delete(c.Request.Context(), taskUUID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": taskUUID})
}
