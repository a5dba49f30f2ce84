package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"citizens-connect/internal/models"
)

// jsISOLayout matches the timestamp text older clients embedded in synthesized message ids.
const jsISOLayout = "2006-01-02T15:04:05.000Z"

// MessageStore owns the discussion threads of one session, keyed by ticket.
type MessageStore struct {
	mu      sync.RWMutex
	threads map[string][]*models.Message
	owner   map[string]string // message id -> ticket id
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		threads: make(map[string][]*models.Message),
		owner:   make(map[string]string),
	}
}

func normalizeMessage(m models.Message) (models.Message, bool) {
	m = m.Clone()
	if m.ID == "" {
		m.ID = m.LegacyID
	}
	if m.ID == "" || m.TicketID == "" {
		return m, false
	}
	m.SetLikes(m.Likes)
	return m, true
}

func (s *MessageStore) add(m models.Message) {
	s.threads[m.TicketID] = append(s.threads[m.TicketID], &m)
	s.owner[m.ID] = m.TicketID
}

// Append adds an optimistic local message.
func (s *MessageStore) Append(m models.Message) bool {
	m, ok := normalizeMessage(m)
	if !ok {
		return false
	}
	m.Pending = true

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.owner[m.ID]; exists {
		return false
	}
	s.add(m)
	return true
}

// Ingest adds a server-delivered message unless its id is already known. A known id is the
// echo of our own optimistic copy, which is then marked confirmed.
func (s *MessageStore) Ingest(m models.Message) bool {
	m, ok := normalizeMessage(m)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticketID, exists := s.owner[m.ID]; exists {
		if existing := s.find(ticketID, m.ID); existing != nil {
			existing.Pending = false
		}
		return false
	}
	s.add(m)
	return true
}

// Merge ingests a batch and returns how many messages were new. Re-applying a batch adds nothing.
func (s *MessageStore) Merge(batch []models.Message) int {
	added := 0
	for _, m := range batch {
		if s.Ingest(m) {
			added++
		}
	}
	return added
}

func (s *MessageStore) find(ticketID, id string) *models.Message {
	for _, m := range s.threads[ticketID] {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// resolve finds a message by id, then falls back to id shapes produced by older clients:
// the legacy _id, a shared trailing segment, and msg_<timestamp>_<position>.
func (s *MessageStore) resolve(ticketID, id string) *models.Message {
	if owner, ok := s.owner[id]; ok {
		return s.find(owner, id)
	}

	thread := s.threads[ticketID]
	for _, m := range thread {
		if m.LegacyID != "" && m.LegacyID == id {
			return m
		}
	}

	segments := strings.Split(id, "_")
	if suffix := segments[len(segments)-1]; suffix != "" {
		for _, m := range thread {
			if strings.HasSuffix(m.ID, suffix) {
				return m
			}
		}
	}

	for i, m := range thread {
		synthesized := fmt.Sprintf("msg_%s_%d", m.Timestamp.UTC().Format(jsISOLayout), i)
		if synthesized == id {
			return m
		}
	}
	return nil
}

// ToggleLike flips userID's like on the resolved message. The returned copy carries the canonical id.
func (s *MessageStore) ToggleLike(ticketID, messageID, userID string) (models.Message, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.resolve(ticketID, messageID)
	if m == nil {
		return models.Message{}, false, false
	}
	liked := m.ToggleLike(userID)
	return m.Clone(), liked, true
}

// ApplyLikes replaces the like set reported by the server; the count is always derived locally.
func (s *MessageStore) ApplyLikes(messageID string, likes []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owner[messageID]
	if !ok {
		return false
	}
	m := s.find(owner, messageID)
	if m == nil {
		return false
	}
	m.SetLikes(likes)
	return true
}

func (s *MessageStore) Delete(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owner[messageID]
	if !ok {
		return false
	}
	thread := s.threads[owner]
	for i, m := range thread {
		if m.ID == messageID {
			s.threads[owner] = append(thread[:i], thread[i+1:]...)
			break
		}
	}
	delete(s.owner, messageID)
	return true
}

func (s *MessageStore) Has(messageID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owner[messageID]
	return ok
}

// Thread returns the ticket's messages, oldest first.
func (s *MessageStore) Thread(ticketID string) []models.Message {
	s.mu.RLock()
	out := make([]models.Message, 0, len(s.threads[ticketID]))
	for _, m := range s.threads[ticketID] {
		out = append(out, m.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
