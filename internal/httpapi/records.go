package httpapi

import (
	"net/http"

	"mango/internal/accounts"
	"mango/internal/apperr"
	"mango/internal/reporting"
	"mango/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ListRecords returns one page of records visible to the request scope
// inside the resolved time window.
func (h Handlers) ListRecords(c *gin.Context) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}
	window, ok := requestWindow(c)
	if !ok {
		return
	}
	page, ok := requestPage(c)
	if !ok {
		return
	}

	out, err := h.Records.List(c.Request.Context(), scope, window, c.DefaultQuery("status", "all"), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListPublicRecords ignores identity and lists public records only.
func (h Handlers) ListPublicRecords(c *gin.Context) {
	window, ok := requestWindow(c)
	if !ok {
		return
	}
	page, ok := requestPage(c)
	if !ok {
		return
	}

	out, err := h.Records.List(c.Request.Context(), accounts.GlobalScope(), window, c.DefaultQuery("status", "all"), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListUnassignedRecords lists records not yet attributed to an account.
func (h Handlers) ListUnassignedRecords(c *gin.Context) {
	page, ok := requestPage(c)
	if !ok {
		return
	}
	out, err := h.Records.ListUnassigned(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetRecord returns one record, via the opportunistic cache when warm.
func (h Handlers) GetRecord(c *gin.Context) {
	ctx := c.Request.Context()
	account := requestAccount(c)
	recordUUID := c.Param("uuid")

	if rec, hit := h.Cache.Get(ctx, account, recordUUID); hit {
		c.JSON(http.StatusOK, rec)
		return
	}

	rec, err := h.Records.Get(ctx, account, recordUUID)
	if err != nil {
		writeError(c, err)
		return
	}
	h.Cache.Put(ctx, account, rec)
	c.JSON(http.StatusOK, rec)
}

// CreateRecord normalizes and stores a record document.
func (h Handlers) CreateRecord(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		writeBadJSON(c)
		return
	}

	rec, err := h.Records.Create(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.Events != nil {
		// Best-effort; the record is already stored.
		if _, err := h.Events.AnnounceRecord(c.Request.Context(), rec.Account, rec.UUID); err != nil {
			logger.FromGin(c).Warn("announce record", "uuid", rec.UUID, "error", err)
		}
	}
	c.JSON(http.StatusOK, rec)
}

// AssignRecord claims an orphaned record for the requesting account.
func (h Handlers) AssignRecord(c *gin.Context) {
	account := requestAccount(c)
	if account == "" {
		writeError(c, apperr.Invalid("account", apperr.ReasonMissing))
		return
	}

	recordUUID := c.Param("uuid")
	if err := h.Records.SetAssigned(c.Request.Context(), account, recordUUID); err != nil {
		writeError(c, err)
		return
	}
	h.Cache.Drop(c.Request.Context(), account, recordUUID)
	c.JSON(http.StatusOK, gin.H{"assigned": recordUUID, "accountcode": account})
}

// DeleteRecord removes a record by uuid.
func (h Handlers) DeleteRecord(c *gin.Context) {
	recordUUID := c.Param("uuid")
	if err := h.Records.Delete(c.Request.Context(), recordUUID); err != nil {
		writeError(c, err)
		return
	}
	h.Cache.Drop(c.Request.Context(), requestAccount(c), recordUUID)
	c.JSON(http.StatusOK, gin.H{"deleted": recordUUID})
}

// Summary aggregates records in the window. No lapse returns overall
// totals; lapse=hours returns the legacy epoch-keyed maps; any other
// lapse returns per-bucket rows.
func (h Handlers) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}
	window, ok := requestWindow(c)
	if !ok {
		return
	}

	switch lapse := reporting.Lapse(c.Query("lapse")); lapse {
	case reporting.LapseNone:
		out, err := h.Reports.Totals(ctx, scope, window)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	case reporting.LapseHours:
		out, err := h.Reports.SummarizeHours(ctx, scope, window)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	default:
		out, err := h.Reports.Summarize(ctx, scope, window, lapse)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summaries": out})
	}
}
