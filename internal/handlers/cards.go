package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cardlyhq/cardly-backend/internal/models"
	"github.com/cardlyhq/cardly-backend/internal/services"
	"github.com/cardlyhq/cardly-backend/internal/store"
)

// CardHandler serves card creation, listing, public retrieval, and deletion.
type CardHandler struct {
	cards       *store.CardStore
	sessions    *services.SessionService
	frontendURL string
}

func NewCardHandler(cards *store.CardStore, sessions *services.SessionService, frontendURL string) *CardHandler {
	return &CardHandler{cards: cards, sessions: sessions, frontendURL: frontendURL}
}

// cardWithURL is a card plus its public shareable link.
type cardWithURL struct {
	models.Card
	URL string `json:"url"`
}

type CardResponse struct {
	Success bool        `json:"success"`
	Card    cardWithURL `json:"card"`
}

type CardListResponse struct {
	Cards []cardWithURL `json:"cards"`
}

func (h *CardHandler) withURL(card models.Card) cardWithURL {
	return cardWithURL{Card: card, URL: h.frontendURL + "/card/" + card.ID}
}

// Create handles POST /api/cards. Re-submitting an existing id is the edit
// flow: a full overwrite with no partial update and no version check.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, h.sessions)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var card models.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := card.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if card.ID == "" {
		card.ID = uuid.NewString()
	} else {
		existing, err := h.cards.GetByID(r.Context(), card.ID)
		if err != nil {
			log.Printf("cards: create lookup failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to save card")
			return
		}
		if existing != nil && existing.UserID != userID {
			writeError(w, http.StatusForbidden, "You do not own this card")
			return
		}
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}
	card.UserID = userID

	if err := h.cards.Save(r.Context(), card); err != nil {
		log.Printf("cards: save failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save card")
		return
	}
	writeJSON(w, http.StatusCreated, CardResponse{Success: true, Card: h.withURL(card)})
}

// List handles GET /api/cards. The result is scoped to the caller and
// excludes example/test-prefixed ids and records with no data payload.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, h.sessions)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	all, err := h.cards.GetAll(r.Context())
	if err != nil {
		log.Printf("cards: list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load cards")
		return
	}

	owned := make([]cardWithURL, 0)
	for _, card := range all {
		if card.UserID != userID || card.Data == nil {
			continue
		}
		if strings.HasPrefix(card.ID, "example-") || strings.HasPrefix(card.ID, "test-") {
			continue
		}
		owned = append(owned, h.withURL(card))
	}
	writeJSON(w, http.StatusOK, CardListResponse{Cards: owned})
}

// GetPublic handles GET /api/card/{id}. No authentication: anyone with the
// link can view a card.
func (h *CardHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("cards: get %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to load card")
		return
	}
	if card == nil {
		writeError(w, http.StatusNotFound, "Card not found")
		return
	}
	writeJSON(w, http.StatusOK, CardResponse{Success: true, Card: h.withURL(*card)})
}

// Delete handles DELETE /api/cards/{id}. Only the owner may delete a card.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, h.sessions)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("cards: delete lookup %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}
	if card == nil {
		writeError(w, http.StatusNotFound, "Card not found")
		return
	}
	if card.UserID != userID {
		writeError(w, http.StatusForbidden, "You do not have permission to delete this card")
		return
	}

	if _, err := h.cards.DeleteByID(r.Context(), id); err != nil {
		log.Printf("cards: delete %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
