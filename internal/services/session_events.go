package services

import (
	"context"
	"encoding/json"

	"citizens-connect/internal/models"
)

// registerHandlers wires inbound server events into the stores. Handlers run one at a time in
// arrival order, and a malformed payload is logged and dropped.
func (s *Session) registerHandlers() {
	s.channel.On(models.EventTicketCreated, func(ctx context.Context, data json.RawMessage) {
		s.onTicketUpserted(models.EventTicketCreated, data)
	})
	s.channel.On(models.EventTicketUpdated, func(ctx context.Context, data json.RawMessage) {
		s.onTicketUpserted(models.EventTicketUpdated, data)
	})
	s.channel.On(models.EventTicketsLoaded, s.onTicketsLoaded)
	s.channel.On(models.EventTicketVoted, s.onTicketVoted)
	s.channel.On(models.EventTicketDeleted, s.onTicketDeleted)
	s.channel.On(models.EventMessageReceived, s.onMessageReceived)
	s.channel.On(models.EventMessagesLoaded, s.onMessagesLoaded)
	s.channel.On(models.EventCommentLiked, s.onCommentLiked)
	s.channel.On(models.EventCommentDeleted, s.onCommentDeleted)
}

func (s *Session) decode(event string, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("invalid payload")
		return false
	}
	return true
}

func (s *Session) onTicketUpserted(event string, data json.RawMessage) {
	var ticket models.Ticket
	if !s.decode(event, data, &ticket) || ticket.ID == "" {
		return
	}
	s.tickets.Upsert(ticket)
}

func (s *Session) onTicketsLoaded(_ context.Context, data json.RawMessage) {
	var tickets []models.Ticket
	if !s.decode(models.EventTicketsLoaded, data, &tickets) {
		return
	}
	// Applied oldest last so the newest-first order matches the server's list.
	for i := len(tickets) - 1; i >= 0; i-- {
		if tickets[i].ID != "" {
			s.tickets.Upsert(tickets[i])
		}
	}
	s.log.Debug().Int("count", len(tickets)).Msg("tickets loaded")
}

// onTicketVoted trusts the voter set and ignores the reported count.
func (s *Session) onTicketVoted(_ context.Context, data json.RawMessage) {
	var p models.TicketVotedPayload
	if !s.decode(models.EventTicketVoted, data, &p) {
		return
	}
	if s.tickets.ApplyVotes(p.TicketID, p.Voters) {
		return
	}
	if !s.issues.ApplyVotes(p.TicketID, p.Voters) {
		s.log.Debug().Str("ticket_id", p.TicketID).Msg("vote update for unknown ticket")
	}
}

func (s *Session) onTicketDeleted(_ context.Context, data json.RawMessage) {
	var p models.TicketDeletedPayload
	if !s.decode(models.EventTicketDeleted, data, &p) {
		return
	}
	if !s.tickets.Delete(p.TicketID) {
		s.issues.Delete(p.TicketID)
	}
}

func (s *Session) onMessageReceived(_ context.Context, data json.RawMessage) {
	var msg models.Message
	if !s.decode(models.EventMessageReceived, data, &msg) {
		return
	}
	s.messages.Ingest(msg)
}

func (s *Session) onMessagesLoaded(_ context.Context, data json.RawMessage) {
	var batch []models.Message
	if !s.decode(models.EventMessagesLoaded, data, &batch) {
		return
	}
	added := s.messages.Merge(batch)
	s.log.Debug().Int("received", len(batch)).Int("added", added).Msg("messages loaded")
}

func (s *Session) onCommentLiked(_ context.Context, data json.RawMessage) {
	var p models.CommentLikedPayload
	if !s.decode(models.EventCommentLiked, data, &p) {
		return
	}
	if !s.messages.ApplyLikes(p.MessageID, p.Likes) {
		s.log.Debug().Str("message_id", p.MessageID).Msg("like update for unknown message")
	}
}

func (s *Session) onCommentDeleted(_ context.Context, data json.RawMessage) {
	var p models.CommentDeletedPayload
	if !s.decode(models.EventCommentDeleted, data, &p) {
		return
	}
	s.messages.Delete(p.MessageID)
}
