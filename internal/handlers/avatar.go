// internal/handlers/avatar.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blitzuno/blitzuno/internal/cache"
)

// UploadAvatarHandler accepts a raw image body and stores it under a fresh
// avatar id. Clients pass the returned id as avatarRef when joining a room.
func UploadAvatarHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		contentType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			http.Error(w, "body must be an image", http.StatusUnsupportedMediaType)
			return
		}

		body := http.MaxBytesReader(w, r.Body, cache.MaxAvatarBytes)
		data, err := io.ReadAll(body)
		if err != nil {
			http.Error(w, "avatar too large", http.StatusRequestEntityTooLarge)
			return
		}

		id, err := cache.StoreAvatar(r.Context(), cache.Avatar{ContentType: contentType, Data: data})
		if err != nil {
			logger.Warnf("store avatar: %v", err)
			http.Error(w, "failed to store avatar", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"avatarId": id})
	}
}

// AvatarFromURLHandler fetches an image from a client-supplied URL and stores
// it like a direct upload. The fetch is bounded in both time and size.
func AvatarFromURLHandler(logger *logrus.Logger) http.HandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			http.Error(w, "missing url", http.StatusBadRequest)
			return
		}
		if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
			http.Error(w, "unsupported url scheme", http.StatusBadRequest)
			return
		}

		resp, err := client.Get(req.URL)
		if err != nil {
			http.Error(w, "failed to fetch url", http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			http.Error(w, "upstream returned non-200", http.StatusBadGateway)
			return
		}
		contentType := resp.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			http.Error(w, "url does not point at an image", http.StatusUnsupportedMediaType)
			return
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, cache.MaxAvatarBytes+1))
		if err != nil || len(data) > cache.MaxAvatarBytes {
			http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			return
		}

		id, err := cache.StoreAvatar(r.Context(), cache.Avatar{ContentType: contentType, Data: data})
		if err != nil {
			logger.Warnf("store avatar from url: %v", err)
			http.Error(w, "failed to store avatar", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"avatarId": id})
	}
}

// ServeAvatarHandler streams a stored avatar blob by id (GET /avatars/{id}).
func ServeAvatarHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/avatars/")
		if id == "" || strings.Contains(id, "/") {
			http.Error(w, "invalid avatar id", http.StatusBadRequest)
			return
		}
		a, err := cache.FetchAvatar(r.Context(), id)
		if err != nil {
			logger.Warnf("fetch avatar %s: %v", id, err)
			http.Error(w, "failed to fetch avatar", http.StatusInternalServerError)
			return
		}
		if a == nil {
			http.Error(w, "avatar not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", a.ContentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(a.Data)
	}
}
