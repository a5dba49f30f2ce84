package handler

import (
	"fmt"
	"net/http"

	"citizens-connect/internal/models"
	"citizens-connect/internal/services"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	resolver
}

func NewTicketHandler(sessions SessionProvider) *TicketHandler {
	return &TicketHandler{resolver: resolver{sessions: sessions}}
}

var (
	validFilters = map[services.IssueFilter]bool{
		services.FilterAll: true, services.FilterOpen: true, services.FilterSolved: true,
		services.FilterMine: true, services.FilterOnlineIssues: true,
	}
	validSorts = map[services.IssueSort]bool{
		services.SortNewest: true, services.SortPriority: true, services.SortVotes: true,
	}
)

func (h *TicketHandler) ListIssues(c *gin.Context) {
	q := services.IssueQuery{
		Filter: services.IssueFilter(c.DefaultQuery("filter", string(services.FilterAll))),
		Sort:   services.IssueSort(c.DefaultQuery("sort", string(services.SortNewest))),
		Search: c.Query("q"),
	}
	if !validFilters[q.Filter] {
		writeError(c, fmt.Errorf("%w: unknown filter %q", models.ErrValidation, q.Filter))
		return
	}
	if !validSorts[q.Sort] {
		writeError(c, fmt.Errorf("%w: unknown sort %q", models.ErrValidation, q.Sort))
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Issues(q))
}

func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var draft models.TicketDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	ticket, err := s.CreateTicket(c.Request.Context(), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) LoadTickets(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.LoadTickets(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"message": "Ticket reload requested"})
}

func (h *TicketHandler) VoteTicket(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ticket, err := s.VoteTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) MarkDone(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ticket, err := s.MarkDone(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type assignRequest struct {
	PoliticianID string `json:"politicianId" binding:"required"`
}

func (h *TicketHandler) AssignPolitician(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "politicianId field is required"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	ticket, err := s.AssignPolitician(c.Request.Context(), c.Param("id"), req.PoliticianID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.DeleteTicket(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted"})
}

func (h *TicketHandler) JoinRoom(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.JoinTicketRoom(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Joined ticket room"})
}

func (h *TicketHandler) LeaveRoom(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.LeaveTicketRoom(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Left ticket room"})
}
