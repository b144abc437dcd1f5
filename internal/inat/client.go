package inat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taxonsort/internal/taxonomy"
)

// API defines the iNaturalist operations used by classification.
type API interface {
	ScoreImage(ctx context.Context, imagePath string) (*ScoreResponse, error)
	TaxonByID(ctx context.Context, taxonID int64) (*taxonomy.TaxonRecord, error)
	VerifyToken(ctx context.Context) error
}

// Client provides access to the iNaturalist API.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an iNaturalist API client.
func New(accessToken, baseURL string, opts ...Option) (*Client, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, errors.New("inaturalist access token required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("inaturalist base url required")
	}
	client := &Client{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ScoreImage uploads the photo to the computer-vision scoring endpoint and
// returns the candidate list.
func (c *Client) ScoreImage(ctx context.Context, imagePath string) (*ScoreResponse, error) {
	imagePath = strings.TrimSpace(imagePath)
	if imagePath == "" {
		return nil, errors.New("image path must not be empty")
	}
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/computervision/score_image", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("score_image returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}
	return &payload, nil
}

// TaxonByID fetches a single taxon record including its full ancestor chain.
func (c *Client) TaxonByID(ctx context.Context, taxonID int64) (*taxonomy.TaxonRecord, error) {
	if taxonID <= 0 {
		return nil, errors.New("taxon id must be positive")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/taxa/%d", c.baseURL, taxonID), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("taxa lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload taxaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode taxa response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("taxon %d not found", taxonID)
	}
	return &payload.Results[0], nil
}

// VerifyToken performs a cheap authenticated request to confirm the access
// token is still valid.
func (c *Client) VerifyToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/observations?per_page=1", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("access token rejected with status %d", resp.StatusCode)
	default:
		return fmt.Errorf("token verification returned %d (latency=%v)", resp.StatusCode, latency)
	}
}
