package interfaces

import (
	"context"

	"github.com/learnedgeek/site/internal/models"
)

// Publisher is the application-facing entry point for social publishing.
type Publisher interface {
	// IsConfigured reports whether client credentials are present. No I/O.
	IsConfigured() bool

	// HasValidSession reports whether a token and member identity are stored.
	// No network call and no expiry check.
	HasValidSession(ctx context.Context) bool

	// Connect starts the authorization flow: issues a one-time state and
	// returns the URL to redirect the admin to.
	Connect(ctx context.Context) (string, error)

	// CompleteConnect consumes the callback: verifies the state, exchanges
	// the code, resolves the member identity and stores the session.
	CompleteConnect(ctx context.Context, state, code string) error

	// Disconnect clears the stored session.
	Disconnect(ctx context.Context) error

	// Publish creates one post. Expected platform failures are returned
	// inside the result, never as a panic or escaping error.
	Publish(ctx context.Context, req models.PublishRequest) models.PublishResult
}

// ContentService provides blog posts from the content directory.
type ContentService interface {
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, slug string) (*models.RenderedPost, error)

	// CoverImage returns the raw bytes and content type of a post's cover
	// image, or an error when the post has none.
	CoverImage(ctx context.Context, slug string) ([]byte, string, error)
}

// Mailer delivers contact-form messages.
type Mailer interface {
	Send(ctx context.Context, msg *models.ContactMessage) error
}

// ImageConverter converts SVG bytes to PNG bytes. Opaque to the publishing
// core; a fake satisfies it in tests.
type ImageConverter interface {
	SVGToPNG(ctx context.Context, svg []byte) ([]byte, error)
}
