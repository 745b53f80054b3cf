package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"quizbot/internal/cache"
	"quizbot/internal/domain"
	"quizbot/internal/quiz"
)

// SessionStore keeps the transient state of one session per (user, kind).
type SessionStore interface {
	// Load returns nil, nil when no session is stored.
	Load(ctx context.Context, kind domain.SessionKind, userID int64) (*quiz.State, error)
	Save(ctx context.Context, state quiz.State) error
	Delete(ctx context.Context, kind domain.SessionKind, userID int64) error
}

type cacheSessionStore struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewSessionStore stores states as JSON under quizbot:session:state:<user>:<kind>.
func NewSessionStore(c domain.Cache, ttl time.Duration) SessionStore {
	return &cacheSessionStore{cache: c, ttl: ttl}
}

func sessionKey(kind domain.SessionKind, userID int64) string {
	return cache.GenerateCacheKey("session", "state", strconv.FormatInt(userID, 10), string(kind))
}

func (s *cacheSessionStore) Load(ctx context.Context, kind domain.SessionKind, userID int64) (*quiz.State, error) {
	raw, err := s.cache.Get(ctx, sessionKey(kind, userID))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, nil
		}
		return nil, domain.NewStoreError("failed to load session state", err)
	}
	var st quiz.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, domain.NewStoreError("session state is corrupt", err)
	}
	return &st, nil
}

func (s *cacheSessionStore) Save(ctx context.Context, state quiz.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKey(state.Kind, state.UserID), string(raw), s.ttl); err != nil {
		return domain.NewStoreError("failed to save session state", err)
	}
	return nil
}

func (s *cacheSessionStore) Delete(ctx context.Context, kind domain.SessionKind, userID int64) error {
	if err := s.cache.Delete(ctx, sessionKey(kind, userID)); err != nil {
		return domain.NewStoreError("failed to delete session state", err)
	}
	return nil
}
