package interfaces

import (
	"context"

	"github.com/learnedgeek/site/internal/models"
)

// StorageManager coordinates all storage areas.
type StorageManager interface {
	SessionStore() SessionStore
	StateStore() StateStore
	ContactStore() ContactStore
	UserStore() UserStore

	Close() error
}

// SessionStore persists the LinkedIn session (token + member identity).
// Injected into the publisher so it can be backed by the embedded database
// or a test double without touching the publishing logic.
type SessionStore interface {
	// Load returns the stored session, or nil when none exists.
	Load(ctx context.Context) (*models.SocialSession, error)
	Save(ctx context.Context, session *models.SocialSession) error
	Clear(ctx context.Context) error
}

// StateStore persists one-time OAuth state tokens for the connect round trip.
type StateStore interface {
	Save(ctx context.Context, state *models.OAuthState) error

	// Consume marks the state used and returns an error when the state is
	// unknown, already used, or expired. It never succeeds twice.
	Consume(ctx context.Context, state string) error
}

// ContactStore persists contact-form submissions.
type ContactStore interface {
	Save(ctx context.Context, msg *models.ContactMessage) error
	MarkDelivered(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.ContactMessage, error)
}

// UserStore manages the admin account.
type UserStore interface {
	Get(ctx context.Context, email string) (*models.AdminUser, error)
	Save(ctx context.Context, user *models.AdminUser) error
}
