package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"time"

	"github.com/cardlyhq/cardly-backend/internal/kv"
	"github.com/cardlyhq/cardly-backend/internal/store"
)

const (
	// SessionDuration is 7 days.
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the store key prefix for sessions.
	SessionKeyPrefix = "session:"
)

// SessionService issues and resolves opaque session tokens. Tokens live in
// the external store when one is configured, with the same in-memory
// fallback as the persistence services, so login keeps working in fallback
// mode.
type SessionService struct {
	kv  kv.Store // nil when no store is configured
	mem *store.MemoryStore
}

func NewSessionService(kvStore kv.Store, mem *store.MemoryStore) *SessionService {
	return &SessionService{kv: kvStore, mem: mem}
}

// Create issues a new session token for a user.
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	if s.kv == nil {
		s.mem.SetSession(token, userID, SessionDuration)
		return token, nil
	}
	if err := s.kv.Set(ctx, SessionKeyPrefix+token, userID, SessionDuration); err != nil {
		log.Printf("sessions: create falling back to memory: %v", err)
		s.mem.SetSession(token, userID, SessionDuration)
	}
	return token, nil
}

// UserID resolves a session token to the owning user id.
func (s *SessionService) UserID(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	if s.kv == nil {
		return s.mem.SessionUserID(token)
	}

	userID, err := s.kv.Get(ctx, SessionKeyPrefix+token)
	if err == nil {
		return userID, true
	}
	if !errors.Is(err, kv.ErrNotFound) {
		log.Printf("sessions: lookup falling back to memory: %v", err)
	}
	// Sessions issued during a store outage live in memory only.
	return s.mem.SessionUserID(token)
}

// Destroy invalidates a session token.
func (s *SessionService) Destroy(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if s.kv != nil {
		if err := s.kv.Del(ctx, SessionKeyPrefix+token); err != nil {
			log.Printf("sessions: destroy: %v", err)
		}
	}
	s.mem.DeleteSession(token)
}
