package store

import (
	"strings"
	"sync"
	"time"

	"github.com/cardlyhq/cardly-backend/internal/models"
)

// MemoryStore is the process-lifetime fallback used when no external store
// is configured or a store operation fails. It is constructed once in main
// and shared by reference. Data written here is never migrated back to the
// external store.
type MemoryStore struct {
	mu       sync.Mutex
	cards    []models.Card
	users    map[string]models.User // keyed by the same user:email:/user:id: keys as the store
	sessions map[string]memorySession
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		sessions: make(map[string]memorySession),
	}
}

// SaveCard inserts the card, replacing any existing card with the same id.
func (m *MemoryStore) SaveCard(card models.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cards {
		if c.ID == card.ID {
			m.cards[i] = card
			return
		}
	}
	m.cards = append(m.cards, card)
}

// Cards returns a copy of all cards.
func (m *MemoryStore) Cards() []models.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Card, len(m.cards))
	copy(out, m.cards)
	return out
}

// CardByID returns the card with the given id, or nil.
func (m *MemoryStore) CardByID(id string) *models.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.ID == id {
			card := c
			return &card
		}
	}
	return nil
}

// DeleteCard removes the card with the given id and reports whether it existed.
func (m *MemoryStore) DeleteCard(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cards {
		if c.ID == id {
			m.cards = append(m.cards[:i], m.cards[i+1:]...)
			return true
		}
	}
	return false
}

// SetUser stores a user under a fully qualified key (user:email:... or user:id:...).
func (m *MemoryStore) SetUser(key string, user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[key] = user
}

// UserByKey returns the user stored under the given key, or nil.
func (m *MemoryStore) UserByKey(key string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[key]
	if !ok {
		return nil
	}
	return &user
}

// SetSession stores a session token for a user. A non-positive ttl creates
// an already expired session (useful in tests).
func (m *MemoryStore) SetSession(token, userID string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = memorySession{userID: userID, expiresAt: time.Now().Add(ttl)}
}

// SessionUserID resolves a session token, dropping it when expired.
func (m *MemoryStore) SessionUserID(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return "", false
	}
	if time.Now().After(s.expiresAt) {
		delete(m.sessions, token)
		return "", false
	}
	return s.userID, true
}

// DeleteSession removes a session token.
func (m *MemoryStore) DeleteSession(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// NormalizeEmail lowercases and trims an email for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
