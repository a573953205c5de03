package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learnedgeek/site/internal/models"
)

// handleContact handles POST /api/contact. The message is persisted before
// the delivery attempt; a mail outage is reported but loses nothing.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteError(w, http.StatusBadRequest, "a valid email address is required")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		WriteError(w, http.StatusBadRequest, "message body is required")
		return
	}

	msg := &models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Subject:   strings.TrimSpace(req.Subject),
		Body:      req.Body,
		CreatedAt: time.Now(),
	}

	ctx := r.Context()
	store := s.app.Storage.ContactStore()

	if err := store.Save(ctx, msg); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save contact message")
		WriteError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	if err := s.app.Mailer.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("id", msg.ID).Msg("Contact mail delivery failed")
		// Stored but undelivered — tell the caller it was accepted.
		WriteJSON(w, http.StatusAccepted, map[string]string{"id": msg.ID, "status": "stored"})
		return
	}

	if err := store.MarkDelivered(ctx, msg.ID); err != nil {
		s.logger.Warn().Err(err).Str("id", msg.ID).Msg("Failed to mark message delivered")
	}

	WriteJSON(w, http.StatusOK, map[string]string{"id": msg.ID, "status": "sent"})
}
