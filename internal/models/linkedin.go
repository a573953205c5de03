package models

import "time"

// TokenBundle holds the access token returned by the OAuth token endpoint.
// Never log this in full; log only whether a token is present.
type TokenBundle struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	RefreshExpiresIn int    `json:"refresh_token_expires_in,omitempty"`
}

// SocialSession pairs an access token with the resolved member identity.
// Persisted by the SessionStore after a completed connect flow.
type SocialSession struct {
	Token       TokenBundle `json:"token"`
	MemberURN   string      `json:"member_urn"`
	ConnectedAt time.Time   `json:"connected_at"`
}

// OAuthState is a one-time token correlating an authorization redirect with
// its callback. Consumed exactly once; a mismatch is treated as CSRF.
type OAuthState struct {
	State     string    `json:"state" badgerhold:"key"`
	CreatedAt time.Time `json:"created_at"`
	Used      bool      `json:"used"`
}

// UploadHandle is the result of registering an image upload slot. It lives
// for a single publish operation and is not persisted.
type UploadHandle struct {
	UploadURL string `json:"upload_url"`
	AssetURN  string `json:"asset_urn"`
}

// PublishRequest describes one post to publish.
type PublishRequest struct {
	Text             string `json:"text"`
	ArticleURL       string `json:"article_url"`
	ImageBytes       []byte `json:"-"`
	ImageContentType string `json:"image_content_type,omitempty"`
}

// HasImage reports whether the request carries image bytes.
func (r *PublishRequest) HasImage() bool {
	return len(r.ImageBytes) > 0
}

// PublishResult is the outcome of a publish operation. Expected platform
// failures (non-2xx responses) surface here rather than as errors.
type PublishResult struct {
	OK           bool   `json:"ok"`
	PostID       string `json:"post_id,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

// PublishSuccess builds a success result.
func PublishSuccess(postID string) PublishResult {
	return PublishResult{OK: true, PostID: postID}
}

// PublishFailure builds a failure result.
func PublishFailure(msg string) PublishResult {
	return PublishResult{OK: false, ErrorMessage: msg}
}
