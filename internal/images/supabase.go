package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	supabaseDefaultTimeout = 30 * time.Second
	supabaseStoragePath    = "/storage/v1/object"
	supabaseListLimit      = 100

	headerAuthorization = "Authorization"
	headerAPIKey        = "apikey"
	headerContentType   = "Content-Type"
	headerUpsert        = "x-upsert"

	contentTypeJSON = "application/json"
)

var errSupabaseUnexpectedStatus = errors.New("supabase storage unexpected status")

// SupabaseClient is a minimal Supabase Storage REST client covering the
// list, download and upload calls the image pipeline needs.
type SupabaseClient struct {
	baseURL    string
	apiKey     string
	bucket     string
	httpClient *http.Client
}

// SupabaseConfig holds configuration for the storage client.
type SupabaseConfig struct {
	BaseURL string
	APIKey  string
	Bucket  string
	Timeout time.Duration
}

// NewSupabaseClient creates a storage client.
func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = supabaseDefaultTimeout
	}

	return &SupabaseClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		bucket:  cfg.Bucket,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// IsConfigured reports whether the client has enough configuration to call
// the API.
func (c *SupabaseClient) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != "" && c.bucket != ""
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
}

type listEntry struct {
	Name string `json:"name"`
}

// List returns object names under the prefix.
func (c *SupabaseClient) List(ctx context.Context, prefix string) ([]string, error) {
	body, err := json.Marshal(listRequest{Prefix: prefix, Limit: supabaseListLimit})
	if err != nil {
		return nil, fmt.Errorf("marshal list request: %w", err)
	}

	url := fmt.Sprintf("%s%s/list/%s", c.baseURL, supabaseStoragePath, c.bucket)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}

	c.setAuth(req)
	req.Header.Set(headerContentType, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errSupabaseUnexpectedStatus, resp.StatusCode)
	}

	var entries []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}

	return names, nil
}

// Download fetches an object's bytes.
func (c *SupabaseClient) Download(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s%s/%s/%s", c.baseURL, supabaseStoragePath, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download object: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errSupabaseUnexpectedStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}

	return data, nil
}

// Upload stores an object, overwriting any existing one at the same path.
func (c *SupabaseClient) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s%s/%s/%s", c.baseURL, supabaseStoragePath, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}

	c.setAuth(req)
	req.Header.Set(headerContentType, contentType)
	req.Header.Set(headerUpsert, "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: %d", errSupabaseUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

// PublicURL returns the unauthenticated URL of an object in a public bucket.
func (c *SupabaseClient) PublicURL(path string) string {
	return fmt.Sprintf("%s%s/public/%s/%s", c.baseURL, supabaseStoragePath, c.bucket, path)
}

func (c *SupabaseClient) setAuth(req *http.Request) {
	req.Header.Set(headerAuthorization, "Bearer "+c.apiKey)
	req.Header.Set(headerAPIKey, c.apiKey)
}
