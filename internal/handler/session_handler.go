package handler

import (
	"net/http"

	"citizens-connect/internal/models"
	"citizens-connect/internal/services"
	"citizens-connect/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionProvider is the part of the session manager the handlers need.
type SessionProvider interface {
	Open(identity models.Identity) (*services.Session, error)
	Close(userID string) error
}

type resolver struct {
	sessions SessionProvider
}

// session opens the caller's session on demand, so every route works without an explicit login call.
func (r resolver) session(c *gin.Context) (*services.Session, bool) {
	s, err := r.sessions.Open(utils.IdentityFromContext(c))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return s, true
}

type SessionHandler struct {
	resolver
	log zerolog.Logger
}

func NewSessionHandler(sessions SessionProvider, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		resolver: resolver{sessions: sessions},
		log:      log.With().Str("component", "session_handler").Logger(),
	}
}

func (h *SessionHandler) OpenSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":    s.Identity().UserID,
		"name":      s.Identity().Name,
		"role":      s.Identity().Role,
		"connected": s.Connected(),
	})
}

func (h *SessionHandler) CloseSession(c *gin.Context) {
	identity := utils.IdentityFromContext(c)
	if err := h.sessions.Close(identity.UserID); err != nil {
		h.log.Warn().Err(err).Str("user_id", identity.UserID).Msg("session teardown reported an error")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}
