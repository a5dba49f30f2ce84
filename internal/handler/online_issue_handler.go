package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type OnlineIssueHandler struct {
	resolver
}

func NewOnlineIssueHandler(sessions SessionProvider) *OnlineIssueHandler {
	return &OnlineIssueHandler{resolver: resolver{sessions: sessions}}
}

func (h *OnlineIssueHandler) GetOnlineIssues(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	issues, lastUpdated := s.OnlineIssues()
	resp := gin.H{"issues": issues, "lastUpdated": nil}
	if !lastUpdated.IsZero() {
		resp["lastUpdated"] = lastUpdated
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OnlineIssueHandler) RefreshOnlineIssues(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	issues, err := s.RefreshOnlineIssues(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	_, lastUpdated := s.OnlineIssues()
	c.JSON(http.StatusOK, gin.H{"issues": issues, "lastUpdated": lastUpdated})
}
