package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/cardlyhq/cardly-backend/internal/kv"
	"github.com/cardlyhq/cardly-backend/internal/models"
)

const (
	// UserEmailKeyPrefix keys users by normalized email.
	UserEmailKeyPrefix = "user:email:"
	// UserIDKeyPrefix keys users by id.
	UserIDKeyPrefix = "user:id:"
)

// UserStore persists users under two independent keys (email and id) with
// the same store/fallback duality as CardStore. Email uniqueness is the
// signup handler's job: it probes GetByEmail before calling Save, so two
// concurrent signups for the same email can still both succeed.
type UserStore struct {
	kv  kv.Store // nil when no store is configured
	mem *MemoryStore
}

func NewUserStore(store kv.Store, mem *MemoryStore) *UserStore {
	return &UserStore{kv: store, mem: mem}
}

// GetByEmail looks a user up by normalized (lowercased, trimmed) email,
// checking the external store first and the in-memory map second.
// Returns (nil, nil) when no user exists under that email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	key := UserEmailKeyPrefix + NormalizeEmail(email)
	return s.get(ctx, key)
}

// GetByID is the id-keyed analogue of GetByEmail.
func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.get(ctx, UserIDKeyPrefix+id)
}

func (s *UserStore) get(ctx context.Context, key string) (*models.User, error) {
	if s.kv == nil {
		return s.mem.UserByKey(key), nil
	}

	raw, err := s.kv.Get(ctx, key)
	if err == nil {
		var user models.User
		if jsonErr := json.Unmarshal([]byte(raw), &user); jsonErr == nil {
			return &user, nil
		}
		// Malformed stored JSON reads as not-found.
		return s.mem.UserByKey(key), nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		log.Printf("user store: get %s falling back to memory: %v", key, err)
	}
	// A store miss still consults the memory map: records written during an
	// earlier store outage stay reachable for the rest of the process.
	return s.mem.UserByKey(key), nil
}

// Save normalizes the email and writes the user under both the email key
// and the id key. The dual write is not atomic; a failure between the two
// leaves the record visible under one key only. On any store error both
// keys are written to the in-memory map instead.
func (s *UserStore) Save(ctx context.Context, user models.User) error {
	user.Email = NormalizeEmail(user.Email)
	emailKey := UserEmailKeyPrefix + user.Email
	idKey := UserIDKeyPrefix + user.ID

	if s.kv == nil {
		s.mem.SetUser(emailKey, user)
		s.mem.SetUser(idKey, user)
		return nil
	}

	if err := s.saveStore(ctx, emailKey, idKey, user); err != nil {
		log.Printf("user store: save %s falling back to memory: %v", user.ID, err)
		s.mem.SetUser(emailKey, user)
		s.mem.SetUser(idKey, user)
	}
	return nil
}

func (s *UserStore) saveStore(ctx context.Context, emailKey, idKey string, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, emailKey, string(raw), 0); err != nil {
		return err
	}
	return s.kv.Set(ctx, idKey, string(raw), 0)
}
