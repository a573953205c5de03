package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/learnedgeek/site/internal/common"
)

// handleHealth responds to GET/HEAD /api/health with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleVersion responds to GET /api/version with version info.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handlePosts handles GET /api/posts — the post index, newest first.
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	posts, err := s.app.Content.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list posts")
		WriteError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// handlePost handles GET /api/posts/{slug} — one rendered post.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	if slug == "" || strings.Contains(slug, "/") {
		WriteError(w, http.StatusBadRequest, "invalid post slug")
		return
	}

	post, err := s.app.Content.Get(r.Context(), slug)
	if err != nil {
		WriteError(w, http.StatusNotFound, "post not found")
		return
	}

	WriteJSON(w, http.StatusOK, post)
}
