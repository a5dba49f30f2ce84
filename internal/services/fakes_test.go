package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"citizens-connect/internal/channel"
	"citizens-connect/internal/models"
	"citizens-connect/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	event   string
	payload any
}

type fakeChannel struct {
	mu        sync.Mutex
	connected bool
	// degraded reports the channel as not connected while publishes still go through.
	degraded bool
	handlers  map[string][]channel.Handler
	sent      []emitted
	closed    bool
}

func newFakeChannel(connected bool) *fakeChannel {
	return &fakeChannel{connected: connected, handlers: make(map[string][]channel.Handler)}
}

func (f *fakeChannel) Emit(_ context.Context, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return channel.ErrDisconnected
	}
	f.sent = append(f.sent, emitted{event: event, payload: payload})
	return nil
}

func (f *fakeChannel) On(event string, h channel.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = append(f.handlers[event], h)
}

func (f *fakeChannel) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected && !f.degraded
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.connected = false
	return nil
}

func (f *fakeChannel) setConnected(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = v
}

func (f *fakeChannel) deliver(t *testing.T, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	f.deliverRaw(event, data)
}

func (f *fakeChannel) deliverRaw(event string, data json.RawMessage) {
	f.mu.Lock()
	handlers := append([]channel.Handler(nil), f.handlers[event]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(context.Background(), data)
	}
}

func (f *fakeChannel) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, e := range f.sent {
		out = append(out, e.event)
	}
	return out
}

func (f *fakeChannel) last() emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeSource struct {
	mu     sync.Mutex
	issues []models.ExternalIssue
	err    error
	calls  int
	block  chan struct{}
}

func (f *fakeSource) FetchIssues(ctx context.Context, _ bool) ([]models.ExternalIssue, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	issues := make([]models.ExternalIssue, 0, len(f.issues))
	for _, issue := range f.issues {
		issues = append(issues, issue.Clone())
	}
	err := f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return issues, nil
}

func (f *fakeSource) set(issues []models.ExternalIssue, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues = issues
	f.err = err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memoryRepo struct {
	mu    sync.Mutex
	snap  repository.CacheSnapshot
	saves int
}

func (r *memoryRepo) Load(context.Context) (repository.CacheSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap, nil
}

func (r *memoryRepo) Save(_ context.Context, issues []models.ExternalIssue, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = repository.CacheSnapshot{Issues: issues, UpdatedAt: at}
	r.saves++
	return nil
}

func onlineIssue(id, title string) models.ExternalIssue {
	return models.ExternalIssue{
		Ticket: models.Ticket{
			ID:        id,
			Title:     title,
			Category:  "Infrastructure",
			Priority:  models.PriorityMedium,
			Status:    models.StatusOpen,
			Voters:    []string{},
			CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		IsOnlineIssue: true,
		Source:        models.IssueSource{ID: "newsapi", Name: "News Media"},
	}
}

var testIdentity = models.Identity{UserID: "u1", Name: "Ana Citizen", Role: "citizen"}

func newTestSession(t *testing.T, ch *fakeChannel, src *fakeSource) *Session {
	t.Helper()
	if src == nil {
		src = &fakeSource{}
	}
	cache := NewExternalIssueCache(src, nil, time.Hour, zerolog.Nop())
	s, err := NewSession(testIdentity, ch, cache, SessionOptions{}, zerolog.Nop())
	require.NoError(t, err)
	return s
}
