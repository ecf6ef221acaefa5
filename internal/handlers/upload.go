package handlers

import (
	"net/http"

	"github.com/cardlyhq/cardly-backend/internal/services"
)

// UploadHandler stores card images and bank logos in Cloudinary. The service
// is nil when Cloudinary credentials are absent; card creation still accepts
// base64 or URL images inline, so uploads being unavailable only disables
// this endpoint.
type UploadHandler struct {
	uploads  *services.CloudinaryService
	sessions *services.SessionService
}

func NewUploadHandler(uploads *services.CloudinaryService, sessions *services.SessionService) *UploadHandler {
	return &UploadHandler{uploads: uploads, sessions: sessions}
}

type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// Upload handles POST /api/upload.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(r, h.sessions); !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.uploads == nil {
		writeError(w, http.StatusServiceUnavailable, "File uploads are not configured")
		return
	}

	// Max 10MB
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "cardly"
	}

	url, err := h.uploads.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{Success: true, URL: url})
}
