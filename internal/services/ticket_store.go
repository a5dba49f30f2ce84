package services

import (
	"sync"

	"citizens-connect/internal/models"
)

// TicketStore owns the user-created tickets of one session, newest first.
type TicketStore struct {
	mu      sync.RWMutex
	tickets []*models.Ticket
}

func NewTicketStore() *TicketStore {
	return &TicketStore{}
}

func (s *TicketStore) indexOf(id string) int {
	for i, t := range s.tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Insert puts an optimistic ticket at the head.
func (s *TicketStore) Insert(t models.Ticket) {
	t = t.Clone()
	t.SetVoters(t.Voters)
	t.Pending = true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = append([]*models.Ticket{&t}, s.tickets...)
}

// Upsert applies a server-confirmed ticket: replace in place when known, else insert at the head.
func (s *TicketStore) Upsert(t models.Ticket) {
	t = t.Clone()
	t.SetVoters(t.Voters)
	t.Pending = false

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(t.ID); i >= 0 {
		s.tickets[i] = &t
		return
	}
	s.tickets = append([]*models.Ticket{&t}, s.tickets...)
}

func (s *TicketStore) Get(id string) (models.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tickets[i].Clone(), true
	}
	return models.Ticket{}, false
}

func (s *TicketStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// update runs fn on the ticket with id under the write lock and returns a copy of the result.
func (s *TicketStore) update(id string, fn func(t *models.Ticket)) (models.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Ticket{}, false
	}
	fn(s.tickets[i])
	return s.tickets[i].Clone(), true
}

func (s *TicketStore) ToggleVote(id, userID string) (models.Ticket, bool) {
	return s.update(id, func(t *models.Ticket) { t.ToggleVote(userID) })
}

// ApplyVotes overwrites the vote state with what the server reported.
func (s *TicketStore) ApplyVotes(id string, voters []string) bool {
	_, ok := s.update(id, func(t *models.Ticket) { t.SetVoters(voters) })
	return ok
}

func (s *TicketStore) MarkDone(id string) (models.Ticket, bool) {
	return s.update(id, func(t *models.Ticket) { t.MarkDone() })
}

func (s *TicketStore) Assign(id, politicianID string) (models.Ticket, bool) {
	return s.update(id, func(t *models.Ticket) { t.AssignedTo = politicianID })
}

func (s *TicketStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
	return true
}

func (s *TicketStore) List() []models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t.Clone())
	}
	return out
}
