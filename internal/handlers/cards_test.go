package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardlyhq/cardly-backend/internal/models"
)

func businessBody() map[string]interface{} {
	return map[string]interface{}{
		"type":  "business",
		"style": "style1",
		"data": map[string]interface{}{
			"name":    "Asha Pillai",
			"title":   "Engineer",
			"company": "Acme",
			"email":   "asha@acme.dev",
			"phone":   "+1 555 0100",
		},
	}
}

func TestCreateCardUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cards", "", businessBody())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
}

func TestCreateCardMissingRequiredField(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupUser(t, "u1", "x@y.com")

	rec := env.do(t, http.MethodPost, "/api/cards", token, map[string]interface{}{
		"type":  "bank",
		"style": "style1",
		"data": map[string]interface{}{
			"accountHolder": "A",
			"bankName":      "B",
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Missing required field: accountNumber", body["error"])
}

func TestCreateCardInvalidTypeAndStyle(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupUser(t, "u1", "x@y.com")

	body := businessBody()
	body["type"] = "credit"
	rec := env.do(t, http.MethodPost, "/api/cards", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = businessBody()
	body["style"] = "style9"
	rec = env.do(t, http.MethodPost, "/api/cards", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndFetchPublicCard(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupUser(t, "u1", "x@y.com")

	image := "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="
	body := businessBody()
	body["data"].(map[string]interface{})["image"] = image

	rec := env.do(t, http.MethodPost, "/api/cards", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody(t, rec)
	assert.Equal(t, true, created["success"])
	card := created["card"].(map[string]interface{})
	id := card["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, testFrontendURL+"/card/"+id, card["url"])
	assert.Equal(t, "u1", card["userId"])

	// Public retrieval needs no auth and returns the data payload
	// byte-for-byte, including the image.
	rec = env.do(t, http.MethodGet, "/api/card/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody(t, rec)
	fetchedCard := fetched["card"].(map[string]interface{})
	data := fetchedCard["data"].(map[string]interface{})
	assert.Equal(t, image, data["image"])
	assert.Equal(t, "Asha Pillai", data["name"])
}

func TestGetPublicCardNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/card/no-such-card", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Card not found", body["error"])
}

// List is scoped to the caller and drops example-/test- prefixed ids and
// records without a data payload.
func TestListCardsOwnershipFiltering(t *testing.T) {
	env := newTestEnv(t)
	tokenA := env.signupUser(t, "userA", "a@x.com")
	env.signupUser(t, "userB", "b@x.com")

	now := time.Now()
	data := &models.CardData{
		Name: "N", Title: "T", Company: "C", Email: "e@x.com", Phone: "1",
	}
	env.mem.SaveCard(models.Card{ID: "mine-1", Type: models.CardTypeBusiness, Style: "style1", Data: data, CreatedAt: now, UserID: "userA"})
	env.mem.SaveCard(models.Card{ID: "mine-2", Type: models.CardTypeBusiness, Style: "style2", Data: data, CreatedAt: now, UserID: "userA"})
	env.mem.SaveCard(models.Card{ID: "theirs", Type: models.CardTypeBusiness, Style: "style1", Data: data, CreatedAt: now, UserID: "userB"})
	env.mem.SaveCard(models.Card{ID: "example-seed", Type: models.CardTypeBusiness, Style: "style1", Data: data, CreatedAt: now, UserID: "userA"})
	env.mem.SaveCard(models.Card{ID: "test-seed", Type: models.CardTypeBusiness, Style: "style1", Data: data, CreatedAt: now, UserID: "userA"})
	env.mem.SaveCard(models.Card{ID: "broken", Type: models.CardTypeBusiness, Style: "style1", CreatedAt: now, UserID: "userA"})
	env.mem.SaveCard(models.Card{ID: "legacy", Type: models.CardTypeBusiness, Style: "style1", Data: data, CreatedAt: now})

	rec := env.do(t, http.MethodGet, "/api/cards", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	cards := body["cards"].([]interface{})
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.(map[string]interface{})["id"].(string))
	}
	assert.ElementsMatch(t, []string{"mine-1", "mine-2"}, ids)
}

func TestListCardsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/cards", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteCardOwnership(t *testing.T) {
	env := newTestEnv(t)
	tokenA := env.signupUser(t, "userA", "a@x.com")
	tokenB := env.signupUser(t, "userB", "b@x.com")

	rec := env.do(t, http.MethodPost, "/api/cards", tokenA, businessBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["card"].(map[string]interface{})["id"].(string)

	// Not the owner: forbidden, card untouched.
	rec = env.do(t, http.MethodDelete, "/api/cards/"+id, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/card/"+id, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Owner may delete.
	rec = env.do(t, http.MethodDelete, "/api/cards/"+id, tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	rec = env.do(t, http.MethodGet, "/api/card/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCardNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupUser(t, "u1", "x@y.com")

	rec := env.do(t, http.MethodDelete, "/api/cards/nonexistent-id", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/cards/nonexistent-id", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Re-submitting a full card under the same id is the edit flow: a complete
// overwrite, rejected when the id belongs to someone else.
func TestEditCardOverwrite(t *testing.T) {
	env := newTestEnv(t)
	tokenA := env.signupUser(t, "userA", "a@x.com")
	tokenB := env.signupUser(t, "userB", "b@x.com")

	body := businessBody()
	body["id"] = "card-1"
	rec := env.do(t, http.MethodPost, "/api/cards", tokenA, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	body["style"] = "style3"
	body["data"].(map[string]interface{})["phone"] = "+1 555 0199"
	rec = env.do(t, http.MethodPost, "/api/cards", tokenA, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	fetched := env.do(t, http.MethodGet, "/api/card/card-1", "", nil)
	card := decodeBody(t, fetched)["card"].(map[string]interface{})
	assert.Equal(t, "style3", card["style"])
	assert.Equal(t, "+1 555 0199", card["data"].(map[string]interface{})["phone"])

	// Someone else cannot overwrite the same id.
	rec = env.do(t, http.MethodPost, "/api/cards", tokenB, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateCardGeneratesIDAndTimestamp(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupUser(t, "u1", "x@y.com")

	rec := env.do(t, http.MethodPost, "/api/cards", token, businessBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	card := decodeBody(t, rec)["card"].(map[string]interface{})
	assert.NotEmpty(t, card["id"])
	assert.NotEmpty(t, card["createdAt"])
}
