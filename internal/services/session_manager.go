package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"citizens-connect/internal/channel"
	"citizens-connect/internal/models"
	"citizens-connect/internal/repository"
	"citizens-connect/internal/source"

	"github.com/rs/zerolog"
)

// ChannelFactory opens the realtime channel for one user. Implementations may hand back a
// channel that is not connected yet; sessions treat that as offline, not as an error.
type ChannelFactory func(ctx context.Context, identity models.Identity) (channel.Channel, error)

type SessionManagerConfig struct {
	FreshnessWindow time.Duration
	RefreshInterval time.Duration
	IdleTTL         time.Duration
	SweepInterval   time.Duration
}

// SessionManager owns every live Session, one per user id.
type SessionManager struct {
	rootCtx    context.Context
	newChannel ChannelFactory
	source     source.Source
	repo       repository.IssueCacheRepository
	cfg        SessionManagerConfig
	now        func() time.Time
	log        zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager ties session lifetimes to rootCtx, not to the request that opened them.
func NewSessionManager(rootCtx context.Context, newChannel ChannelFactory, src source.Source, repo repository.IssueCacheRepository, cfg SessionManagerConfig, log zerolog.Logger) *SessionManager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}
	return &SessionManager{
		rootCtx:    rootCtx,
		newChannel: newChannel,
		source:     src,
		repo:       repo,
		cfg:        cfg,
		now:        time.Now,
		log:        log.With().Str("component", "session_manager").Logger(),
		sessions:   make(map[string]*Session),
	}
}

// Open returns the user's session, creating and starting it on first use. The channel is opened
// without holding the registry lock, so a slow subscribe only delays its own user. When two
// requests race to create the same session, the first to register wins and the other is closed.
func (m *SessionManager) Open(identity models.Identity) (*Session, error) {
	if !identity.Valid() {
		return nil, models.ErrNoIdentity
	}
	if s, ok := m.Get(identity.UserID); ok {
		return s, nil
	}

	s, err := m.newSession(identity)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[identity.UserID]; ok {
		m.mu.Unlock()
		existing.Touch()
		if err := s.Close(); err != nil {
			m.log.Warn().Err(err).Str("user_id", identity.UserID).Msg("closing duplicate session failed")
		}
		return existing, nil
	}
	m.sessions[identity.UserID] = s
	m.mu.Unlock()

	m.log.Info().Str("user_id", identity.UserID).Bool("connected", s.Connected()).Msg("session opened")
	return s, nil
}

func (m *SessionManager) newSession(identity models.Identity) (*Session, error) {
	ch, err := m.newChannel(m.rootCtx, identity)
	if err != nil {
		return nil, fmt.Errorf("open channel for %s: %w", identity.UserID, err)
	}
	cache := NewExternalIssueCache(m.source, m.repo, m.cfg.FreshnessWindow, m.log)
	s, err := NewSession(identity, ch, cache, SessionOptions{
		RefreshInterval: m.cfg.RefreshInterval,
		Now:             m.now,
	}, m.log)
	if err != nil {
		if closer, ok := ch.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	s.Start(m.rootCtx)
	return s, nil
}

func (m *SessionManager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if ok {
		s.Touch()
	}
	return s, ok
}

// Close tears down the user's session. Closing an unknown user is a no-op.
func (m *SessionManager) Close(userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	m.log.Info().Str("user_id", userID).Msg("session closed")
	return s.Close()
}

func (m *SessionManager) CloseAll(_ context.Context) error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var firstErr error
	for id, s := range sessions {
		if err := s.Close(); err != nil {
			m.log.Warn().Err(err).Str("user_id", id).Msg("closing session failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartJanitor closes sessions idle for longer than the configured TTL.
func (m *SessionManager) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-ctx.Done():
				m.log.Debug().Msg("stopping session janitor")
				return
			}
		}
	}()
}

func (m *SessionManager) sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var idle []string
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.Unlock()

	for _, id := range idle {
		if err := m.Close(id); err != nil {
			m.log.Warn().Err(err).Str("user_id", id).Msg("closing idle session failed")
		}
	}
	if len(idle) > 0 {
		m.log.Info().Int("closed", len(idle)).Msg("idle sessions swept")
	}
	return len(idle)
}
