package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mango/internal/accounts"
	"mango/internal/apperr"
	"mango/internal/auth"
	"mango/internal/events"
	"mango/internal/records"
	"mango/internal/reporting"
	"mango/internal/tasks"
	"mango/internal/timewindow"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Records  *records.Service
	Reports  *reporting.Service
	Tasks    *tasks.Service
	Accounts *accounts.Service
	Events   *events.Service
	Auth     *auth.Manager

	// Cache is optional; nil disables record read caching.
	Cache *records.Cache
}

// requestAccount returns the account a request acts for: the explicit
// account query param when present, otherwise the authenticated
// identity. Empty means unauthenticated, which resolves to the global
// (public-only) scope.
func requestAccount(c *gin.Context) string {
	if account := strings.TrimSpace(c.Query("account")); account != "" {
		return account
	}
	if account, ok := auth.AccountFrom(c.Request.Context()); ok {
		return account
	}
	return ""
}

func (h Handlers) requestScope(c *gin.Context) (accounts.Scope, bool) {
	scope, err := h.Accounts.ResolveScope(c.Request.Context(), requestAccount(c))
	if err != nil {
		writeError(c, err)
		return accounts.Scope{}, false
	}
	return scope, true
}

func requestWindow(c *gin.Context) (timewindow.Window, bool) {
	w, err := timewindow.Resolve(c.Query("start"), c.Query("end"))
	if err != nil {
		writeError(c, err)
		return timewindow.Window{}, false
	}
	return w, true
}

func requestPage(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.DefaultQuery("page", "0"))
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		writeError(c, apperr.Invalid("page", apperr.ReasonMalformed))
		return 0, false
	}
	return page, true
}

// writeError maps service errors onto the wire contract. Not-found
// deliberately renders as 400: clients of the original service treat
// any 4xx as "no such document" and some break on 404 bodies.
func writeError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   verr.Field,
			"message": verr.Error(),
		})
		return
	}

	var dup *apperr.DuplicateError
	if errors.As(err, &dup) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"messages": []string{dup.Error()},
		})
		return
	}

	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   nf.Resource,
			"message": nf.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, timewindow.ErrInvalidFormat), errors.Is(err, timewindow.ErrInvalidRange):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "window",
			"message": err.Error(),
		})
	case errors.Is(err, reporting.ErrInvalidLapse):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "lapse",
			"message": err.Error(),
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal",
			"message": "internal error",
		})
	}
}

// writeBadJSON is the legacy malformed-body response.
func writeBadJSON(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"JSON": false})
}

// Healthz reports liveness.
func (h Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
