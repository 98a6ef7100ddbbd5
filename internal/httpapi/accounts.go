package httpapi

import (
	"net/http"
	"time"

	"mango/internal/accounts"
	"mango/internal/apperr"

	"github.com/gin-gonic/gin"
)

// CreateAccount registers a plain user account.
func (h Handlers) CreateAccount(c *gin.Context) {
	var a accounts.Account
	if err := c.ShouldBindJSON(&a); err != nil {
		writeBadJSON(c)
		return
	}
	if a.Type == "" {
		a.Type = accounts.TypeUser
	}

	created, err := h.Accounts.Create(c.Request.Context(), a)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// CreateOrg registers an org account; membership is managed separately.
func (h Handlers) CreateOrg(c *gin.Context) {
	var a accounts.Account
	if err := c.ShouldBindJSON(&a); err != nil {
		writeBadJSON(c)
		return
	}
	a.Type = accounts.TypeOrg

	created, err := h.Accounts.Create(c.Request.Context(), a)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (h Handlers) GetAccount(c *gin.Context) {
	a, err := h.Accounts.Get(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h Handlers) DeleteAccount(c *gin.Context) {
	accountUUID := c.Param("uuid")
	if err := h.Accounts.Delete(c.Request.Context(), accountUUID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": accountUUID})
}

// OrgMembers lists the member account names of an org.
func (h Handlers) OrgMembers(c *gin.Context) {
	members, err := h.Accounts.Members(c.Request.Context(), c.Param("account"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

type memberRequest struct {
	Member string `json:"member"`
}

func (h Handlers) AddOrgMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadJSON(c)
		return
	}
	if req.Member == "" {
		writeError(c, apperr.Invalid("member", apperr.ReasonMissing))
		return
	}

	org := c.Param("account")
	if err := h.Accounts.AddMember(c.Request.Context(), org, req.Member); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"org": org, "member": req.Member})
}

func (h Handlers) RemoveOrgMember(c *gin.Context) {
	org := c.Param("account")
	member := c.Param("member")
	if err := h.Accounts.RemoveMember(c.Request.Context(), org, member); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"org": org, "member": member})
}

// --- Auth ---

type loginRequest struct {
	Account string `json:"account"`
}

// Login issues a JWT token pair for a known account name.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadJSON(c)
		return
	}
	if req.Account == "" {
		writeError(c, apperr.Invalid("account", apperr.ReasonMissing))
		return
	}

	a, err := h.Accounts.GetByName(c.Request.Context(), req.Account)
	if err != nil {
		writeError(c, err)
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), a.Account)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}
