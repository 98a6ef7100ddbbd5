package httpapi

import (
	"net/http"

	"mango/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ListEvents returns the announcement feed for the requesting account,
// oldest first.
func (h Handlers) ListEvents(c *gin.Context) {
	account := requestAccount(c)
	if account == "" {
		writeError(c, apperr.Invalid("account", apperr.ReasonMissing))
		return
	}

	evs, err := h.Events.ForAccount(c.Request.Context(), account)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": evs})
}
