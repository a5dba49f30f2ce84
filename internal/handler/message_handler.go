package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	resolver
}

func NewMessageHandler(sessions SessionProvider) *MessageHandler {
	return &MessageHandler{resolver: resolver{sessions: sessions}}
}

// ListMessages returns the local thread and asks the server for anything newer.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ticketID := c.Param("id")
	s.LoadMessages(c.Request.Context(), ticketID)
	c.JSON(http.StatusOK, s.Messages(ticketID))
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	msg, err := s.SendMessage(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) LikeComment(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	msg, err := s.LikeComment(c.Request.Context(), c.Param("id"), c.Param("messageId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) DeleteComment(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.DeleteComment(c.Request.Context(), c.Param("id"), c.Param("messageId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
