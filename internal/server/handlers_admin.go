package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/models"
)

// --- JWT helpers ---

// signJWT creates a signed HMAC-SHA256 JWT for the admin user.
func signJWT(user *models.AdminUser, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.Email,
		"iss": "site-server",
		"iat": now.Unix(),
		"exp": now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// --- Admin auth ---

// handleAdminLogin handles POST /api/admin/login — exchange credentials for a JWT.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.UserStore()

	user, err := store.Get(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := signJWT(user, &s.config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT")
		WriteError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	user.LastLoginAt = time.Now()
	if err := store.Save(ctx, user); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record login time")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_in": int(s.config.Auth.GetTokenExpiry().Seconds()),
	})
}

// handleAdminMessages handles GET /api/admin/messages — stored contact messages.
func (s *Server) handleAdminMessages(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	msgs, err := s.app.Storage.ContactStore().List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list contact messages")
		WriteError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

// --- LinkedIn admin flow ---

// handleLinkedInStatus handles GET /api/admin/linkedin/status.
func (s *Server) handleLinkedInStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{
		"configured": s.app.Publisher.IsConfigured(),
		"connected":  s.app.Publisher.HasValidSession(r.Context()),
	})
}

// handleLinkedInConnect handles GET /api/admin/linkedin/connect — issues a
// state and returns the authorization URL for the admin UI to redirect to.
func (s *Server) handleLinkedInConnect(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	authURL, err := s.app.Publisher.Connect(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("LinkedIn connect failed")
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"authorization_url": authURL})
}

// handleLinkedInCallback handles GET /api/admin/linkedin/callback — the
// platform redirect. The one-time state authenticates the request.
func (s *Server) handleLinkedInCallback(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	state := q.Get("state")
	code := q.Get("code")

	if errCode := q.Get("error"); errCode != "" {
		WriteError(w, http.StatusBadRequest, "authorization denied: "+errCode)
		return
	}
	if state == "" || code == "" {
		WriteError(w, http.StatusBadRequest, "state and code are required")
		return
	}

	if err := s.app.Publisher.CompleteConnect(r.Context(), state, code); err != nil {
		s.logger.Warn().Err(err).Msg("LinkedIn callback rejected")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

// handleLinkedInDisconnect handles POST /api/admin/linkedin/disconnect.
func (s *Server) handleLinkedInDisconnect(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.Publisher.Disconnect(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// handleLinkedInPublish handles POST /api/admin/linkedin/publish — push one
// blog post to LinkedIn, optionally with its cover image attached.
func (s *Server) handleLinkedInPublish(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Slug      string `json:"slug"`
		Text      string `json:"text,omitempty"`
		WithImage bool   `json:"with_image,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Slug == "" {
		WriteError(w, http.StatusBadRequest, "slug is required")
		return
	}

	ctx := r.Context()

	post, err := s.app.Content.Get(ctx, req.Slug)
	if err != nil {
		WriteError(w, http.StatusNotFound, "post not found")
		return
	}

	text := req.Text
	if text == "" {
		text = post.Title + "\n\n" + post.Description
	}

	publishReq := models.PublishRequest{
		Text:       text,
		ArticleURL: s.config.ArticleURL(post.Slug),
	}

	if req.WithImage {
		data, ctype, err := s.app.Content.CoverImage(ctx, req.Slug)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		// The platform rejects vector uploads; rasterize SVG covers.
		if strings.Contains(ctype, "svg") {
			png, err := s.app.Images.SVGToPNG(ctx, data)
			if err != nil {
				s.logger.Error().Err(err).Msg("Cover image conversion failed")
				WriteError(w, http.StatusInternalServerError, "cover image conversion failed")
				return
			}
			data, ctype = png, "image/png"
		}

		publishReq.ImageBytes = data
		publishReq.ImageContentType = ctype
	}

	result := s.app.Publisher.Publish(ctx, publishReq)
	if !result.OK {
		WriteJSON(w, http.StatusBadGateway, result)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
