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
	// CardKeyPrefix is the store key prefix for individual cards.
	CardKeyPrefix = "card:"
	// CardIndexKey holds the serialized list of all cards.
	CardIndexKey = "digital-cards"
)

// CardStore persists cards in the external key-value store when one is
// available, degrading to the shared in-memory store otherwise. A store
// failure mid-operation redirects the whole operation to memory; no error
// is surfaced and nothing is retried against the store.
type CardStore struct {
	kv  kv.Store // nil when no store is configured
	mem *MemoryStore
}

func NewCardStore(store kv.Store, mem *MemoryStore) *CardStore {
	return &CardStore{kv: store, mem: mem}
}

// Save writes the card under card:{id} and appends it to the all-cards index
// when the id is not already present. The two writes are not atomic: a
// failure between them leaves the index and the primary record out of step,
// and concurrent saves can lose an index update to the read-modify-write
// race. Both are accepted limitations.
func (s *CardStore) Save(ctx context.Context, card models.Card) error {
	if s.kv == nil {
		s.mem.SaveCard(card)
		return nil
	}
	if err := s.saveStore(ctx, card); err != nil {
		log.Printf("card store: save %s falling back to memory: %v", card.ID, err)
		s.mem.SaveCard(card)
	}
	return nil
}

func (s *CardStore) saveStore(ctx context.Context, card models.Card) error {
	raw, err := json.Marshal(card)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, CardKeyPrefix+card.ID, string(raw), 0); err != nil {
		return err
	}

	index, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	for _, c := range index {
		if c.ID == card.ID {
			return nil
		}
	}
	index = append(index, card)
	return s.writeIndex(ctx, index)
}

// GetAll returns every card in the index, or an empty slice when the index
// key is absent.
func (s *CardStore) GetAll(ctx context.Context) ([]models.Card, error) {
	if s.kv == nil {
		return s.mem.Cards(), nil
	}
	index, err := s.readIndex(ctx)
	if err != nil {
		log.Printf("card store: list falling back to memory: %v", err)
		return s.mem.Cards(), nil
	}
	return index, nil
}

// GetByID looks up the primary key first and falls back to scanning the
// index, which tolerates records written before the card:{id} scheme
// existed. Returns (nil, nil) when the card is not found by either path.
func (s *CardStore) GetByID(ctx context.Context, id string) (*models.Card, error) {
	if s.kv == nil {
		return s.mem.CardByID(id), nil
	}

	raw, err := s.kv.Get(ctx, CardKeyPrefix+id)
	if err == nil {
		var card models.Card
		if jsonErr := json.Unmarshal([]byte(raw), &card); jsonErr == nil {
			return &card, nil
		}
		// Malformed stored JSON reads as not-found via the index scan.
	} else if !errors.Is(err, kv.ErrNotFound) {
		log.Printf("card store: get %s falling back to memory: %v", id, err)
		return s.mem.CardByID(id), nil
	}

	index, err := s.readIndex(ctx)
	if err != nil {
		log.Printf("card store: get %s falling back to memory: %v", id, err)
		return s.mem.CardByID(id), nil
	}
	for _, c := range index {
		if c.ID == id {
			card := c
			return &card, nil
		}
	}
	return nil, nil
}

// DeleteByID removes the primary key and rewrites the index without the id.
// The return value reports whether the id was present in the index, not
// whether the primary key existed.
func (s *CardStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	if s.kv == nil {
		return s.mem.DeleteCard(id), nil
	}
	deleted, err := s.deleteStore(ctx, id)
	if err != nil {
		log.Printf("card store: delete %s falling back to memory: %v", id, err)
		return s.mem.DeleteCard(id), nil
	}
	return deleted, nil
}

func (s *CardStore) deleteStore(ctx context.Context, id string) (bool, error) {
	if err := s.kv.Del(ctx, CardKeyPrefix+id); err != nil {
		return false, err
	}

	index, err := s.readIndex(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]models.Card, 0, len(index))
	found := false
	for _, c := range index {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return false, nil
	}
	return true, s.writeIndex(ctx, kept)
}

func (s *CardStore) readIndex(ctx context.Context) ([]models.Card, error) {
	raw, err := s.kv.Get(ctx, CardIndexKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []models.Card{}, nil
	}
	if err != nil {
		return nil, err
	}
	var index []models.Card
	if err := json.Unmarshal([]byte(raw), &index); err != nil {
		return nil, err
	}
	return index, nil
}

func (s *CardStore) writeIndex(ctx context.Context, index []models.Card) error {
	raw, err := json.Marshal(index)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, CardIndexKey, string(raw), 0)
}
