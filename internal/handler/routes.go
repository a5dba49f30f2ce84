package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RegisterRoutes mounts every session-backed route on api, which must already carry auth.
func RegisterRoutes(api *gin.RouterGroup, sessions SessionProvider, log zerolog.Logger) {
	sessionHandler := NewSessionHandler(sessions, log)
	ticketHandler := NewTicketHandler(sessions)
	messageHandler := NewMessageHandler(sessions)
	onlineHandler := NewOnlineIssueHandler(sessions)

	api.POST("/session", sessionHandler.OpenSession)
	api.DELETE("/session", sessionHandler.CloseSession)

	api.GET("/issues", ticketHandler.ListIssues)

	tickets := api.Group("/tickets")
	{
		tickets.POST("", ticketHandler.CreateTicket)
		tickets.POST("/load", ticketHandler.LoadTickets)
		tickets.POST("/:id/vote", ticketHandler.VoteTicket)
		tickets.PUT("/:id/done", ticketHandler.MarkDone)
		tickets.PUT("/:id/assign", ticketHandler.AssignPolitician)
		tickets.DELETE("/:id", ticketHandler.DeleteTicket)
		tickets.POST("/:id/join", ticketHandler.JoinRoom)
		tickets.POST("/:id/leave", ticketHandler.LeaveRoom)

		tickets.GET("/:id/messages", messageHandler.ListMessages)
		tickets.POST("/:id/messages", messageHandler.SendMessage)
		tickets.POST("/:id/messages/:messageId/like", messageHandler.LikeComment)
		tickets.DELETE("/:id/messages/:messageId", messageHandler.DeleteComment)
	}

	online := api.Group("/online-issues")
	{
		online.GET("", onlineHandler.GetOnlineIssues)
		online.POST("/refresh", onlineHandler.RefreshOnlineIssues)
	}
}
