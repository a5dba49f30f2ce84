package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"citizens-connect/internal/channel"
	"citizens-connect/internal/models"
	"citizens-connect/internal/services"
	"citizens-connect/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingChannel) Emit(_ context.Context, event string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingChannel) On(string, channel.Handler) {}

func (r *recordingChannel) Connected() bool { return true }

func (r *recordingChannel) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type stubSource struct {
	issues []models.ExternalIssue
}

func (s stubSource) FetchIssues(context.Context, bool) ([]models.ExternalIssue, error) {
	return s.issues, nil
}

type testServer struct {
	router *gin.Engine
	ch     *recordingChannel
	mgr    *services.SessionManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ch := &recordingChannel{}
	factory := func(context.Context, models.Identity) (channel.Channel, error) { return ch, nil }
	src := stubSource{issues: []models.ExternalIssue{{
		Ticket: models.Ticket{
			ID:        "online_1",
			Title:     "Water main burst on 5th Ave",
			Status:    models.StatusOpen,
			Priority:  models.PriorityHigh,
			Voters:    []string{},
			CreatedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		},
		IsOnlineIssue: true,
		Source:        models.IssueSource{ID: "newsapi", Name: "News Media"},
	}}}

	mgr := services.NewSessionManager(context.Background(), factory, src, nil, services.SessionManagerConfig{}, zerolog.Nop())
	t.Cleanup(func() { _ = mgr.CloseAll(context.Background()) })

	router := gin.New()
	api := router.Group("/api")
	api.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			utils.SetIdentity(c, models.Identity{UserID: uid, Name: "Tester", Role: "citizen"})
		}
		c.Next()
	})
	RegisterRoutes(api, mgr, zerolog.Nop())

	return &testServer{router: router, ch: ch, mgr: mgr}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "u1")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestOpenSession_RequiresIdentity(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "u1", body["userId"])
	assert.Equal(t, true, body["connected"])
	assert.Equal(t, 1, srv.mgr.Len())

	w = srv.do(t, http.MethodDelete, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, srv.mgr.Len())
}

func TestCreateTicketAndList(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/tickets", models.TicketDraft{
		Title:       "Broken traffic light",
		Description: "Signal stuck on red at Elm and 3rd",
		Category:    "Transportation",
		Priority:    models.PriorityUrgent,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Ticket](t, w)
	assert.Equal(t, "u1", created.AuthorID)
	assert.Contains(t, srv.ch.sent(), models.EventCreateTicket)

	w = srv.do(t, http.MethodGet, "/api/issues?filter=my_tickets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]models.CombinedIssue](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
	assert.True(t, mine[0].Pending)
}

func TestCreateTicket_ValidationError(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/tickets", models.TicketDraft{Title: "No category", Description: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "category")
}

func TestListIssues_RejectsUnknownFilter(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/issues?filter=everything", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = srv.do(t, http.MethodGet, "/api/issues?sort=random", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketMutations_NotFound(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/tickets/missing/vote", nil},
		{http.MethodPut, "/api/tickets/missing/done", nil},
		{http.MethodPut, "/api/tickets/missing/assign", gin.H{"politicianId": "pol-1"}},
		{http.MethodDelete, "/api/tickets/missing", nil},
		{http.MethodPost, "/api/tickets/t1/messages/missing/like", nil},
		{http.MethodDelete, "/api/tickets/t1/messages/missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestAssign_RequiresPolitician(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPut, "/api/tickets/t1/assign", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoteTicket_Toggles(t *testing.T) {
	srv := newTestServer(t)
	w := srv.do(t, http.MethodPost, "/api/tickets", models.TicketDraft{
		Title: "Graffiti", Description: "On the library wall", Category: "Other",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Ticket](t, w).ID

	w = srv.do(t, http.MethodPost, "/api/tickets/"+id+"/vote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.Ticket](t, w).Upvotes)

	w = srv.do(t, http.MethodPost, "/api/tickets/"+id+"/vote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[models.Ticket](t, w).Upvotes)
}

func TestMessages(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/tickets/t1/messages", gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/tickets/t1/messages", gin.H{"content": "Any update on this?"})
	require.Equal(t, http.StatusCreated, w.Code)
	sent := decode[models.Message](t, w)

	w = srv.do(t, http.MethodPost, "/api/tickets/t1/messages/"+sent.ID+"/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.Message](t, w).LikeCount)

	w = srv.do(t, http.MethodGet, "/api/tickets/t1/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	thread := decode[[]models.Message](t, w)
	require.Len(t, thread, 1)
	assert.Contains(t, srv.ch.sent(), models.EventLoadMessages)

	w = srv.do(t, http.MethodDelete, "/api/tickets/t1/messages/"+sent.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOnlineIssues(t *testing.T) {
	srv := newTestServer(t)

	// opening the session starts a background load, which a manual refresh may briefly collide with
	require.Eventually(t, func() bool {
		return srv.do(t, http.MethodPost, "/api/online-issues/refresh", nil).Code == http.StatusOK
	}, time.Second, 10*time.Millisecond)

	w := srv.do(t, http.MethodGet, "/api/online-issues", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Issues      []models.ExternalIssue `json:"issues"`
		LastUpdated *time.Time             `json:"lastUpdated"`
	}](t, w)
	require.Len(t, body.Issues, 1)
	assert.Equal(t, "online_1", body.Issues[0].ID)
	assert.NotNil(t, body.LastUpdated)

	w = srv.do(t, http.MethodGet, "/api/issues?filter=online_issues", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.CombinedIssue](t, w), 1)
}

func TestRoomsAndReload(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/tickets/t1/join", nil).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/tickets/t1/leave", nil).Code)
	require.Equal(t, http.StatusAccepted, srv.do(t, http.MethodPost, "/api/tickets/load", nil).Code)

	sent := srv.ch.sent()
	assert.Contains(t, sent, models.EventJoinTicketRoom)
	assert.Contains(t, sent, models.EventLeaveTicketRoom)
	assert.Contains(t, sent, models.EventLoadTickets)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(services.ErrRefreshInFlight))
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrEmptyContent))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
