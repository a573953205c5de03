// Package storage provides BadgerDB-based persistence
package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/interfaces"
	"github.com/learnedgeek/site/internal/models"
)

// stateTTL is how long an issued OAuth state remains consumable. One
// authorization round trip fits comfortably inside it.
const stateTTL = 15 * time.Minute

// sessionKey is the fixed key under which the single LinkedIn session lives.
const sessionKey = "linkedin"

// Manager wraps badgerhold and hands out the typed store views.
type Manager struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewManager opens the embedded database at the configured path.
func NewManager(logger *common.Logger, config *common.StorageConfig) (*Manager, error) {
	opts := badgerhold.DefaultOptions
	opts.Dir = config.Path
	opts.ValueDir = config.Path
	opts.Logger = nil // Disable badger's internal logging

	store, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("BadgerDB opened")

	return &Manager{store: store, logger: logger}, nil
}

// Close closes the database
func (m *Manager) Close() error {
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}

// SessionStore returns the LinkedIn session store.
func (m *Manager) SessionStore() interfaces.SessionStore {
	return &sessionStore{m: m}
}

// StateStore returns the one-time OAuth state store.
func (m *Manager) StateStore() interfaces.StateStore {
	return &stateStore{m: m}
}

// ContactStore returns the contact message store.
func (m *Manager) ContactStore() interfaces.ContactStore {
	return &contactStore{m: m}
}

// UserStore returns the admin account store.
func (m *Manager) UserStore() interfaces.UserStore {
	return &userStore{m: m}
}

// --- SessionStore ---

// sessionRecord wraps the session for storage under a fixed key.
type sessionRecord struct {
	Key     string               `badgerhold:"key"`
	Session models.SocialSession `json:"session"`
}

type sessionStore struct {
	m *Manager
}

func (s *sessionStore) Load(ctx context.Context) (*models.SocialSession, error) {
	var rec sessionRecord
	err := s.m.store.Get(sessionKey, &rec)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &rec.Session, nil
}

func (s *sessionStore) Save(ctx context.Context, session *models.SocialSession) error {
	rec := sessionRecord{Key: sessionKey, Session: *session}
	if err := s.m.store.Upsert(sessionKey, &rec); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.m.logger.Debug().Str("member", session.MemberURN).Msg("Session saved")
	return nil
}

func (s *sessionStore) Clear(ctx context.Context) error {
	err := s.m.store.Delete(sessionKey, sessionRecord{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// --- StateStore ---

type stateStore struct {
	m *Manager
}

func (s *stateStore) Save(ctx context.Context, state *models.OAuthState) error {
	if err := s.m.store.Upsert(state.State, state); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// Consume marks the state used. Unknown, reused and expired states all fail;
// the caller treats every failure as a possible CSRF.
func (s *stateStore) Consume(ctx context.Context, state string) error {
	var rec models.OAuthState
	err := s.m.store.Get(state, &rec)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("unknown oauth state")
		}
		return fmt.Errorf("failed to load oauth state: %w", err)
	}

	if rec.Used {
		return fmt.Errorf("oauth state already used")
	}
	if time.Since(rec.CreatedAt) > stateTTL {
		return fmt.Errorf("oauth state expired")
	}

	rec.Used = true
	if err := s.m.store.Update(state, &rec); err != nil {
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return nil
}

// --- ContactStore ---

type contactStore struct {
	m *Manager
}

func (s *contactStore) Save(ctx context.Context, msg *models.ContactMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if err := s.m.store.Upsert(msg.ID, msg); err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	s.m.logger.Debug().Str("id", msg.ID).Msg("Contact message saved")
	return nil
}

func (s *contactStore) MarkDelivered(ctx context.Context, id string) error {
	var msg models.ContactMessage
	if err := s.m.store.Get(id, &msg); err != nil {
		return fmt.Errorf("failed to load contact message: %w", err)
	}
	msg.Delivered = true
	if err := s.m.store.Update(id, &msg); err != nil {
		return fmt.Errorf("failed to update contact message: %w", err)
	}
	return nil
}

func (s *contactStore) List(ctx context.Context) ([]*models.ContactMessage, error) {
	var msgs []models.ContactMessage
	if err := s.m.store.Find(&msgs, nil); err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}

	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})

	out := make([]*models.ContactMessage, len(msgs))
	for i := range msgs {
		out[i] = &msgs[i]
	}
	return out, nil
}

// --- UserStore ---

type userStore struct {
	m *Manager
}

func (s *userStore) Get(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := s.m.store.Get(email, &user)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("user '%s' not found", email)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *userStore) Save(ctx context.Context, user *models.AdminUser) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if err := s.m.store.Upsert(user.Email, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
