// Package linkedin provides a client for the LinkedIn OAuth and publishing API
package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/interfaces"
	"github.com/learnedgeek/site/internal/models"
)

const (
	DefaultOAuthBaseURL = "https://www.linkedin.com"
	DefaultAPIBaseURL   = "https://api.linkedin.com"
	DefaultTimeout      = 30 * time.Second
	DefaultRateLimit    = 2 // requests per second
)

// Client implements the LinkedInClient interface
type Client struct {
	oauthBaseURL string
	apiBaseURL   string
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
	logger       *common.Logger
	limiter      *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithOAuthBaseURL sets the OAuth endpoint base URL
func WithOAuthBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.oauthBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAPIBaseURL sets the REST API base URL
func WithAPIBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new LinkedIn client
func NewClient(clientID, clientSecret, redirectURL string, opts ...ClientOption) *Client {
	c := &Client{
		oauthBaseURL: DefaultOAuthBaseURL,
		apiBaseURL:   DefaultAPIBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-2xx response from any LinkedIn endpoint. The
// message is the raw response body; credentials never appear in it.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LinkedIn API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// AuthorizationURL builds the member authorization redirect URL. Pure
// construction; an empty state is a caller error, not a runtime condition.
func (c *Client) AuthorizationURL(state string, scopes []string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURL)
	q.Set("state", state)
	q.Set("scope", strings.Join(scopes, " "))
	return c.oauthBaseURL + "/oauth/v2/authorization?" + q.Encode()
}

// ExchangeCode exchanges an authorization code for an access token. The
// redirect URI must exactly match the one used in the authorization request;
// the platform silently rejects mismatches.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*models.TokenBundle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURL)

	endpoint := "/oauth/v2/accessToken"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthBaseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug().Str("endpoint", endpoint).Msg("LinkedIn token exchange")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   endpoint,
		}
	}

	var bundle models.TokenBundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if bundle.AccessToken == "" {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "token response missing access_token",
			Endpoint:   endpoint,
		}
	}

	return &bundle, nil
}

// ResolveMemberID resolves the opaque member identifier for the given access
// token via the userinfo endpoint. Safe to retry freely.
func (c *Client) ResolveMemberID(ctx context.Context, accessToken string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := "/v2/userinfo"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	c.logger.Debug().Str("endpoint", endpoint).Msg("LinkedIn identity lookup")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   endpoint,
		}
	}

	var info struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if info.Sub == "" {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    "userinfo response missing sub",
			Endpoint:   endpoint,
		}
	}

	return info.Sub, nil
}

// Ensure Client implements LinkedInClient
var _ interfaces.LinkedInClient = (*Client)(nil)
