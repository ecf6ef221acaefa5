package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/cardlyhq/cardly-backend/internal/models"
	"github.com/cardlyhq/cardly-backend/internal/services"
	"github.com/cardlyhq/cardly-backend/internal/store"
	"github.com/cardlyhq/cardly-backend/pkg/utils"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthHandler serves signup, signin, logout, and the current-user endpoint.
type AuthHandler struct {
	users    *store.UserStore
	sessions *services.SessionService
	secure   bool // mark session cookies Secure in production
}

func NewAuthHandler(users *store.UserStore, sessions *services.SessionService, secure bool) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, secure: secure}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool                   `json:"success"`
	User    map[string]interface{} `json:"user"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Email, password, and name are required")
		return
	}
	email := store.NormalizeEmail(req.Email)
	if !emailPattern.MatchString(email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	// Uniqueness is enforced here by probing the email key; two concurrent
	// signups for the same email can both pass this check.
	existing, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		log.Printf("signup: lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "An account with this email already exists")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("signup: hashing failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      req.Name,
		Password:  hashed,
		CreatedAt: time.Now(),
	}
	if err := h.users.Save(r.Context(), user); err != nil {
		log.Printf("signup: save failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	h.startSession(w, r, user.ID)
	writeJSON(w, http.StatusCreated, AuthResponse{Success: true, User: userPayload(user)})
}

// Signin handles POST /api/auth/signin.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("signin: lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.startSession(w, r, user.ID)
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: userPayload(*user)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(r, h.sessions); !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.sessions.Destroy(r.Context(), sessionToken(r))
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, h.sessions)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": userPayload(*user)})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) {
	token, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		// The caller still gets a success response; they can sign in again.
		log.Printf("auth: failed to create session: %v", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// userPayload shapes the user for responses, never including the password hash.
func userPayload(user models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	}
}
