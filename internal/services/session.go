package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"citizens-connect/internal/channel"
	"citizens-connect/internal/models"

	"github.com/rs/zerolog"
)

// Session is one signed-in user's synchronized view. It replaces a process-wide singleton:
// every user gets independent stores, its own channel subscription and its own refresh timer.
type Session struct {
	identity models.Identity
	channel  channel.Channel

	tickets  *TicketStore
	issues   *ExternalIssueCache
	messages *MessageStore

	refreshInterval time.Duration
	now             func() time.Time
	log             zerolog.Logger

	lastSeen atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type SessionOptions struct {
	RefreshInterval time.Duration
	Now             func() time.Time
}

func NewSession(identity models.Identity, ch channel.Channel, issues *ExternalIssueCache, opts SessionOptions, log zerolog.Logger) (*Session, error) {
	if !identity.Valid() {
		return nil, models.ErrNoIdentity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Hour
	}

	s := &Session{
		identity:        identity,
		channel:         ch,
		tickets:         NewTicketStore(),
		issues:          issues,
		messages:        NewMessageStore(),
		refreshInterval: opts.RefreshInterval,
		now:             opts.Now,
		log:             log.With().Str("component", "session").Str("user_id", identity.UserID).Logger(),
	}
	s.Touch()
	s.registerHandlers()
	return s, nil
}

func (s *Session) Identity() models.Identity { return s.identity }

func (s *Session) Connected() bool { return s.channel.Connected() }

func (s *Session) Touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

func (s *Session) IdleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Start loads online issues in the background, starts the refresh timer and asks the server for tickets.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		issues := s.issues.Get(ctx, false)
		s.log.Debug().Int("count", len(issues)).Msg("online issues loaded")
	}()

	refresher := NewIssueRefresher(s.issues, s.refreshInterval, s.log)
	refresher.Start(ctx, &s.wg)

	s.LoadTickets(ctx)
}

// Close stops background work and releases the channel.
func (s *Session) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}
	if closer, ok := s.channel.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// emit is fire-and-forget: local state is already updated and stays authoritative if this fails.
// Every emit is attempted so that a successful publish can bring the channel back to healthy.
func (s *Session) emit(ctx context.Context, event string, payload any) {
	err := s.channel.Emit(ctx, event, payload)
	switch {
	case err == nil:
	case errors.Is(err, channel.ErrDisconnected):
		s.log.Debug().Err(err).Str("event", event).Msg("channel disconnected, event not sent")
	default:
		s.log.Warn().Err(err).Str("event", event).Msg("emit failed")
	}
}

// Issues returns the combined, filtered and sorted issue list.
func (s *Session) Issues(q IssueQuery) []models.CombinedIssue {
	q.UserID = s.identity.UserID
	return BuildIssueView(s.tickets.List(), s.issues.Issues(), q)
}

func (s *Session) Tickets() []models.Ticket {
	return s.tickets.List()
}

func (s *Session) OnlineIssues() ([]models.ExternalIssue, time.Time) {
	return s.issues.Issues(), s.issues.LastUpdated()
}

func (s *Session) RefreshOnlineIssues(ctx context.Context) ([]models.ExternalIssue, error) {
	return s.issues.Refresh(ctx)
}
