package services

import (
	"context"
	"strings"

	"citizens-connect/internal/models"

	"github.com/google/uuid"
)

func newMessageID() string {
	return "msg_" + uuid.NewString()
}

// SendMessage appends the comment locally and sends it. Whitespace-only content is rejected
// before anything changes.
func (s *Session) SendMessage(ctx context.Context, ticketID, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, models.ErrEmptyContent
	}
	if ticketID == "" {
		return models.Message{}, models.ErrNotFound
	}

	msg := models.Message{
		ID:         newMessageID(),
		TicketID:   ticketID,
		Content:    content,
		Author:     s.identity.Name,
		AuthorID:   s.identity.UserID,
		AuthorRole: s.identity.Role,
		Timestamp:  s.now().UTC(),
		Likes:      []string{},
		LikeCount:  0,
	}

	s.messages.Append(msg)
	s.emit(ctx, models.EventSendMessage, msg)
	return msg, nil
}

// LikeComment toggles the caller's like. The event names the resolved message id, which may
// differ from the one passed in when a legacy id shape matched.
func (s *Session) LikeComment(ctx context.Context, ticketID, messageID string) (models.Message, error) {
	msg, liked, ok := s.messages.ToggleLike(ticketID, messageID, s.identity.UserID)
	if !ok {
		s.log.Warn().Str("message_id", messageID).Msg("message not found for liking")
		return models.Message{}, models.ErrNotFound
	}

	action := models.LikeActionUnlike
	if liked {
		action = models.LikeActionLike
	}
	s.emit(ctx, models.EventLikeComment, models.LikeCommentPayload{
		TicketID:  ticketID,
		MessageID: msg.ID,
		UserID:    s.identity.UserID,
		UserName:  s.identity.Name,
		Action:    action,
	})
	return msg, nil
}

func (s *Session) DeleteComment(ctx context.Context, ticketID, messageID string) error {
	if !s.messages.Delete(messageID) {
		return models.ErrNotFound
	}

	s.emit(ctx, models.EventDeleteComment, models.DeleteCommentPayload{
		TicketID:      ticketID,
		MessageID:     messageID,
		DeletedBy:     s.identity.UserID,
		DeletedByName: s.identity.Name,
		DeletedByRole: s.identity.Role,
	})
	return nil
}

// LoadMessages asks the server for the thread; the reply arrives as messages_loaded.
func (s *Session) LoadMessages(ctx context.Context, ticketID string) {
	s.emit(ctx, models.EventLoadMessages, models.TicketRoomPayload{TicketID: ticketID})
}

func (s *Session) Messages(ticketID string) []models.Message {
	return s.messages.Thread(ticketID)
}
