// Package interfaces defines service contracts for the site server
package interfaces

import (
	"context"

	"github.com/learnedgeek/site/internal/models"
)

// LinkedInClient provides access to the LinkedIn OAuth and publishing API.
type LinkedInClient interface {
	// AuthorizationURL builds the member authorization redirect URL.
	// Pure construction, no I/O.
	AuthorizationURL(state string, scopes []string) string

	// ExchangeCode exchanges an authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (*models.TokenBundle, error)

	// ResolveMemberID resolves the opaque member identifier ("sub") for the
	// given access token. Idempotent and side-effect free.
	ResolveMemberID(ctx context.Context, accessToken string) (string, error)

	// UploadImage runs the three-phase image upload (register slot, PUT
	// bytes) and returns the asset handle for use in a share body.
	UploadImage(ctx context.Context, accessToken, memberURN string, data []byte, contentType string) (*models.UploadHandle, error)

	// CreateLinkShare publishes a post whose media block is an article link.
	// Returns the created post id.
	CreateLinkShare(ctx context.Context, accessToken, memberURN, text, articleURL string) (string, error)

	// CreateImageShare publishes a post referencing a previously uploaded
	// image asset. The article URL is appended to the visible text because
	// image posts render no link preview.
	CreateImageShare(ctx context.Context, accessToken, memberURN, text, articleURL string, handle *models.UploadHandle) (string, error)
}
