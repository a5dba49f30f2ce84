package services

import (
	"context"
	"fmt"
	"strings"

	"citizens-connect/internal/models"
	"citizens-connect/internal/utils"

	"github.com/google/uuid"
)

// CreateTicket inserts the ticket locally before the server hears about it. There is no rollback:
// if the emit is lost the local copy stands until the server says otherwise.
func (s *Session) CreateTicket(ctx context.Context, draft models.TicketDraft) (models.Ticket, error) {
	if err := utils.GetValidator().Struct(draft); err != nil {
		return models.Ticket{}, fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(utils.ParseErrors(err), "; "))
	}

	id := draft.ID
	if id == "" {
		id = "ticket_" + uuid.NewString()
	}
	priority := draft.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	status := draft.Status
	if status == "" {
		status = models.StatusOpen
	}

	ticket := models.Ticket{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Priority:    priority,
		Status:      status,
		Progress:    0,
		Author:      s.identity.Name,
		AuthorID:    s.identity.UserID,
		AuthorRole:  s.identity.Role,
		Voters:      []string{},
		Location:    draft.Location,
		CreatedAt:   s.now().UTC(),
	}

	s.tickets.Insert(ticket)
	s.emit(ctx, models.EventCreateTicket, ticket)

	created, _ := s.tickets.Get(id)
	return created, nil
}

// VoteTicket toggles the caller's vote on a ticket or, failing that, an online issue.
// Every toggle is sent, so voting twice sends two events.
func (s *Session) VoteTicket(ctx context.Context, id string) (models.Ticket, error) {
	updated, ok := s.tickets.ToggleVote(id, s.identity.UserID)
	if !ok {
		issue, found := s.issues.ToggleVote(id, s.identity.UserID)
		if !found {
			return models.Ticket{}, models.ErrNotFound
		}
		updated = issue.Ticket
	}

	s.emit(ctx, models.EventVoteTicket, models.VoteTicketPayload{
		TicketID: id,
		UserID:   s.identity.UserID,
		UserName: s.identity.Name,
	})
	return updated, nil
}

func (s *Session) MarkDone(ctx context.Context, id string) (models.Ticket, error) {
	updated, ok := s.tickets.MarkDone(id)
	if !ok {
		issue, found := s.issues.MarkDone(id)
		if !found {
			return models.Ticket{}, models.ErrNotFound
		}
		updated = issue.Ticket
	}

	s.emit(ctx, models.EventMarkTicketDone, models.MarkTicketDonePayload{
		TicketID:     id,
		MarkedBy:     s.identity.UserID,
		MarkedByName: s.identity.Name,
		MarkedByRole: s.identity.Role,
	})
	return updated, nil
}

func (s *Session) AssignPolitician(ctx context.Context, id, politicianID string) (models.Ticket, error) {
	if strings.TrimSpace(politicianID) == "" {
		return models.Ticket{}, fmt.Errorf("%w: politicianId field is required", models.ErrValidation)
	}

	updated, ok := s.tickets.Assign(id, politicianID)
	if !ok {
		issue, found := s.issues.Assign(id, politicianID)
		if !found {
			return models.Ticket{}, models.ErrNotFound
		}
		updated = issue.Ticket
	}

	s.emit(ctx, models.EventAssignPolitician, models.AssignPoliticianPayload{
		TicketID:     id,
		PoliticianID: politicianID,
		AssignedBy:   s.identity.UserID,
	})
	return updated, nil
}

// DeleteTicket removes the ticket locally. Whether the caller may delete is for the server to decide.
func (s *Session) DeleteTicket(ctx context.Context, id string) error {
	if !s.tickets.Delete(id) && !s.issues.Delete(id) {
		return models.ErrNotFound
	}

	s.emit(ctx, models.EventDeleteTicket, models.DeleteTicketPayload{
		TicketID:      id,
		DeletedBy:     s.identity.UserID,
		DeletedByName: s.identity.Name,
		DeletedByRole: s.identity.Role,
	})
	return nil
}

func (s *Session) LoadTickets(ctx context.Context) {
	s.emit(ctx, models.EventLoadTickets, struct{}{})
}

func (s *Session) JoinTicketRoom(ctx context.Context, ticketID string) {
	s.emit(ctx, models.EventJoinTicketRoom, models.TicketRoomPayload{TicketID: ticketID})
}

func (s *Session) LeaveTicketRoom(ctx context.Context, ticketID string) {
	s.emit(ctx, models.EventLeaveTicketRoom, models.TicketRoomPayload{TicketID: ticketID})
}
