package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/learnedgeek/site/internal/models"
)

// Vendor type-discriminator strings, confined to this table. The rest of the
// package builds typed bodies and never hand-assembles JSON text.
const (
	shareContentKey    = "com.linkedin.ugc.ShareContent"
	visibilityKey      = "com.linkedin.ugc.MemberNetworkVisibility"
	protocolHeader     = "X-Restli-Protocol-Version"
	protocolVersion    = "2.0.0"
	restliIDHeader     = "x-restli-id"
	mediaCategoryLink  = "ARTICLE"
	mediaCategoryImage = "IMAGE"
	lifecyclePublished = "PUBLISHED"
	visibilityPublic   = "PUBLIC"
	mediaStatusReady   = "READY"
	ugcPostsEndpoint   = "/v2/ugcPosts"
)

type ugcPostBody struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type shareContent struct {
	ShareCommentary    textBlock    `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type textBlock struct {
	Text string `json:"text"`
}

type shareMedia struct {
	Status      string     `json:"status"`
	OriginalURL string     `json:"originalUrl,omitempty"`
	Media       string     `json:"media,omitempty"`
	Title       *textBlock `json:"title,omitempty"`
}

// CreateLinkShare publishes a post whose media block declares an article
// link; the URL is what renders as the preview card.
func (c *Client) CreateLinkShare(ctx context.Context, accessToken, memberURN, text, articleURL string) (string, error) {
	body := ugcPostBody{
		Author:         memberURN,
		LifecycleState: lifecyclePublished,
		SpecificContent: map[string]shareContent{
			shareContentKey: {
				ShareCommentary:    textBlock{Text: text},
				ShareMediaCategory: mediaCategoryLink,
				Media: []shareMedia{
					{Status: mediaStatusReady, OriginalURL: articleURL},
				},
			},
		},
		Visibility: map[string]string{visibilityKey: visibilityPublic},
	}

	return c.createShare(ctx, accessToken, body)
}

// CreateImageShare publishes a post referencing an uploaded image asset.
// Image posts render no link preview, so the article URL is appended to the
// visible text — otherwise it is lost to the reader. Documented platform
// behavior, not a stylistic choice.
func (c *Client) CreateImageShare(ctx context.Context, accessToken, memberURN, text, articleURL string, handle *models.UploadHandle) (string, error) {
	visible := text
	if articleURL != "" {
		visible = text + "\n\n" + articleURL
	}

	body := ugcPostBody{
		Author:         memberURN,
		LifecycleState: lifecyclePublished,
		SpecificContent: map[string]shareContent{
			shareContentKey: {
				ShareCommentary:    textBlock{Text: visible},
				ShareMediaCategory: mediaCategoryImage,
				Media: []shareMedia{
					{Status: mediaStatusReady, Media: handle.AssetURN},
				},
			},
		},
		Visibility: map[string]string{visibilityKey: visibilityPublic},
	}

	return c.createShare(ctx, accessToken, body)
}

// createShare POSTs the UGC body and extracts the created post id from the
// x-restli-id response header — the id is not in the body. Omitting the
// protocol-version header is silently rejected by the platform, so it is set
// unconditionally.
func (c *Client) createShare(ctx context.Context, accessToken string, body ugcPostBody) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal share body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+ugcPostsEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(protocolHeader, protocolVersion)

	c.logger.Debug().Str("author", body.Author).Msg("LinkedIn share create")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   ugcPostsEndpoint,
		}
	}

	return resp.Header.Get(restliIDHeader), nil
}
