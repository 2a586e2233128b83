// Package cloudflare reads image records from the Cloudflare Images API.
// The archive only ever GETs: uploads go through the local uploads dir, so
// this client exists for the metadata backfill.
package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrRateLimited is returned on a 429 so callers can back off
var ErrRateLimited = errors.New("cloudflare: rate limited")

const defaultBaseURL = "https://api.cloudflare.com/client/v4"

// Client is a thin Cloudflare Images API reader
type Client struct {
	accountID string
	apiToken  string
	baseURL   string
	client    *http.Client
}

// NewClient creates a client for one account. baseURL "" means the real API.
func NewClient(accountID, apiToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		accountID: accountID,
		apiToken:  apiToken,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientFromEnv reads CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_API_TOKEN
func NewClientFromEnv() *Client {
	return NewClient(os.Getenv("CLOUDFLARE_ACCOUNT_ID"), os.Getenv("CLOUDFLARE_API_TOKEN"), os.Getenv("CLOUDFLARE_API_BASE_URL"))
}

// Configured reports whether both credentials are present
func (c *Client) Configured() bool {
	return c.accountID != "" && c.apiToken != ""
}

// ImageRecord is the slice of a Cloudflare image response the archive keeps
type ImageRecord struct {
	ID       string
	Filename string
	Uploaded *time.Time
	Variants []string
	Raw      string
}

type imageResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Result json.RawMessage `json:"result"`
}

type imageResult struct {
	ID       string   `json:"id"`
	Filename string   `json:"filename"`
	Uploaded string   `json:"uploaded"`
	Variants []string `json:"variants"`
}

// GetImage fetches one image record by its provider ID
func (c *Client) GetImage(ctx context.Context, providerImageID string) (*ImageRecord, error) {
	reqURL := fmt.Sprintf("%s/accounts/%s/images/v1/%s", c.baseURL, c.accountID, providerImageID)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cloudflare API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !parsed.Success {
		if len(parsed.Errors) > 0 {
			return nil, fmt.Errorf("cloudflare API error %d: %s", parsed.Errors[0].Code, parsed.Errors[0].Message)
		}
		return nil, fmt.Errorf("cloudflare API reported failure")
	}

	var result imageResult
	if err := json.Unmarshal(parsed.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	record := &ImageRecord{
		ID:       result.ID,
		Filename: result.Filename,
		Variants: result.Variants,
		Raw:      string(parsed.Result),
	}
	if result.Uploaded != "" {
		if t, err := time.Parse(time.RFC3339, result.Uploaded); err == nil {
			record.Uploaded = &t
		}
	}
	return record, nil
}

// ExtractImageID pulls the provider image ID out of a delivery URL of the
// form https://host/cdn-cgi/imagedelivery/<account>/<id>/<variant>.
func ExtractImageID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	parts := strings.Split(u.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		return "", false
	}
	return parts[4], true
}
