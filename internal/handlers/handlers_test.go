package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/cardlyhq/cardly-backend/internal/models"
	"github.com/cardlyhq/cardly-backend/internal/services"
	"github.com/cardlyhq/cardly-backend/internal/store"
	"github.com/cardlyhq/cardly-backend/pkg/utils"
)

const testFrontendURL = "http://localhost:3000"

type testEnv struct {
	router   *chi.Mux
	mem      *store.MemoryStore
	users    *store.UserStore
	sessions *services.SessionService
}

// newTestEnv wires the handlers over the in-memory fallback, the same path
// the server takes when no key-value store is configured.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := store.NewMemoryStore()
	users := store.NewUserStore(nil, mem)
	cards := store.NewCardStore(nil, mem)
	sessions := services.NewSessionService(nil, mem)

	auth := NewAuthHandler(users, sessions, false)
	cardHandler := NewCardHandler(cards, sessions, testFrontendURL)

	r := chi.NewRouter()
	r.Post("/api/auth/signup", auth.Signup)
	r.Post("/api/auth/signin", auth.Signin)
	r.Post("/api/auth/logout", auth.Logout)
	r.Get("/api/auth/me", auth.Me)
	r.Post("/api/cards", cardHandler.Create)
	r.Get("/api/cards", cardHandler.List)
	r.Delete("/api/cards/{id}", cardHandler.Delete)
	r.Get("/api/card/{id}", cardHandler.GetPublic)

	return &testEnv{router: r, mem: mem, users: users, sessions: sessions}
}

// signupUser creates a user directly and returns a session token.
func (e *testEnv) signupUser(t *testing.T, id, email string) string {
	t.Helper()

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	err = e.users.Save(context.Background(), models.User{
		ID:        id,
		Email:     email,
		Name:      "Test User",
		Password:  hash,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	token, err := e.sessions.Create(context.Background(), id)
	require.NoError(t, err)
	return token
}

// do performs a request; token "" means unauthenticated.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
