package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cardlyhq/cardly-backend/internal/services"
)

// SessionCookieName is the cookie carrying the session token. The token is
// also accepted as an Authorization bearer header.
const SessionCookieName = "session_token"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the uniform failure body {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// sessionToken extracts the session token from the cookie or the
// Authorization header. Returns "" when neither is present.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// currentUserID resolves the caller's user id from the request session.
func currentUserID(r *http.Request, sessions *services.SessionService) (string, bool) {
	return sessions.UserID(r.Context(), sessionToken(r))
}
