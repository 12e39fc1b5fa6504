package service

import (
	"context"
	"fmt"
	"time"

	"session_auth/internal/models"
	"session_auth/internal/session"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a login lasts when no TTL is configured.
const DefaultSessionTTL = time.Hour

// SessionService creates, reads and ends login sessions on top of a session.Store.
type SessionService struct {
	store session.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionService(store session.Store, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{store: store, ttl: ttl, now: time.Now}
}

// Start opens a new session for u. The password hash is not kept in the session.
func (s *SessionService) Start(ctx context.Context, u models.User) (models.Session, error) {
	now := s.now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		User:      models.User{ID: u.ID, Username: u.Username},
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return models.Session{}, fmt.Errorf("start session for %q: %w", u.Username, err)
	}
	return sess, nil
}

// Current returns the live session for id, or (nil, nil).
func (s *SessionService) Current(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// End destroys the session and reports whether a live one existed.
func (s *SessionService) End(ctx context.Context, id string) (bool, error) {
	sess, err := s.Current(ctx, id)
	if err != nil {
		return false, err
	}
	if err := s.store.Destroy(ctx, id); err != nil {
		return false, fmt.Errorf("destroy session: %w", err)
	}
	return sess != nil, nil
}
