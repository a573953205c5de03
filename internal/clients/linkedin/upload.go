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

const feedShareRecipe = "urn:li:digitalmediaRecipe:feedshare-image"

// registerUploadRequest is the phase-1 body declaring the upload intent.
type registerUploadRequest struct {
	RegisterUploadRequest struct {
		Recipes              []string              `json:"recipes"`
		Owner                string                `json:"owner"`
		ServiceRelationships []serviceRelationship `json:"serviceRelationships"`
	} `json:"registerUploadRequest"`
}

type serviceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

// registerUploadResponse mirrors the documented response shape. The nested
// uploadMechanism is keyed by a vendor mechanism string that is not
// guaranteed stable, so it is decoded as a map and scanned.
type registerUploadResponse struct {
	Value struct {
		UploadMechanism map[string]struct {
			UploadURL string `json:"uploadUrl"`
		} `json:"uploadMechanism"`
		Asset string `json:"asset"`
	} `json:"value"`
}

// UploadImage runs the upload pipeline: register an upload slot, then PUT the
// raw bytes to the returned URL. Phases run strictly in order and any failure
// aborts the rest; a registered-but-unused asset is accepted as a server-side
// orphan. The returned handle's asset URN is consumed by CreateImageShare.
func (c *Client) UploadImage(ctx context.Context, accessToken, memberURN string, data []byte, contentType string) (*models.UploadHandle, error) {
	handle, err := c.registerUpload(ctx, accessToken, memberURN)
	if err != nil {
		return nil, err
	}

	if err := c.transferUpload(ctx, accessToken, handle.UploadURL, data, contentType); err != nil {
		return nil, err
	}

	return handle, nil
}

// registerUpload is phase 1: declare the owner and recipe, obtain the upload
// URL and asset URN. Both fields are required; the response shape is parsed
// defensively.
func (c *Client) registerUpload(ctx context.Context, accessToken, memberURN string) (*models.UploadHandle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reqBody registerUploadRequest
	reqBody.RegisterUploadRequest.Recipes = []string{feedShareRecipe}
	reqBody.RegisterUploadRequest.Owner = memberURN
	reqBody.RegisterUploadRequest.ServiceRelationships = []serviceRelationship{
		{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal register request: %w", err)
	}

	endpoint := "/v2/assets?action=registerUpload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("owner", memberURN).Msg("LinkedIn upload registration")

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

	var reg registerUploadResponse
	if err := json.Unmarshal(body, &reg); err != nil {
		return nil, fmt.Errorf("failed to decode register response: %w", err)
	}

	uploadURL := ""
	for _, mech := range reg.Value.UploadMechanism {
		if mech.UploadURL != "" {
			uploadURL = mech.UploadURL
			break
		}
	}
	if uploadURL == "" || reg.Value.Asset == "" {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "register response missing uploadUrl or asset",
			Endpoint:   endpoint,
		}
	}

	return &models.UploadHandle{UploadURL: uploadURL, AssetURN: reg.Value.Asset}, nil
}

// transferUpload is phase 2: PUT the raw binary to the registered URL. The
// failure mode is purely the HTTP status; there is no JSON body to parse.
func (c *Client) transferUpload(ctx context.Context, accessToken, uploadURL string, data []byte, contentType string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug().Int("bytes", len(data)).Str("content_type", contentType).Msg("LinkedIn binary upload")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   "upload transfer",
		}
	}

	return nil
}
