// Product Discovery workflow API client
//
// Endpoint shapes follow the FastAPI backend under /api/workflow.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"scout/internal/models"
	"scout/internal/shared"
)

const defaultRateLimit = 5.0 // requests per second

// DiscoveryService implements [WorkflowAPI] and [StreamOpener] against the
// Product Discovery backend.
type DiscoveryService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	creds      Credentials
	bufferSize int
}

// DiscoveryOpts contains construction options for [DiscoveryService].
type DiscoveryOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	RateLimit  float64     // requests per second, defaults to 5
	Creds      Credentials // optional; nil sends unauthenticated requests
	BufferSize int         // progress stream channel buffer, defaults to 64
}

// NewDiscoveryService creates a workflow API client for the given backend.
func NewDiscoveryService(opts DiscoveryOpts) *DiscoveryService {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8000"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64
	}

	return &DiscoveryService{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		creds:      opts.Creds,
		bufferSize: opts.BufferSize,
	}
}

type startRequest struct {
	InputType string `json:"input_type"`
	UserInput string `json:"user_input"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type confirmProductRequest struct {
	ProductIndex int `json:"product_index"`
}

type confirmVariantRequest struct {
	VariantIndex int `json:"variant_index"`
}

type confirmExtractionRequest struct {
	Confirmed bool `json:"confirmed"`
}

// ResultsResponse is the payload of GET /api/workflow/results/{id}.
type ResultsResponse struct {
	SessionID    string              `json:"session_id"`
	Results      []models.ResultItem `json:"results"`
	TotalResults int                 `json:"total_results"`
}

// HealthStatus is the payload of the backend health check.
type HealthStatus struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	Version        string `json:"version"`
	ActiveSessions int    `json:"active_sessions"`
}

// errorDetail mirrors FastAPI's error body.
type errorDetail struct {
	Detail string `json:"detail"`
}

// doRequest performs a rate-limited JSON request against the backend.
func (s *DiscoveryService) doRequest(ctx context.Context, method, path string, body any, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.creds != nil {
		s.creds.Apply(req)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail errorDetail
		if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Start begins a new workflow session.
// Input validation mirrors the backend: input type must be keyword or url and the input non-empty.
func (s *DiscoveryService) Start(ctx context.Context, inputType models.InputType, userInput string) (string, error) {
	if !inputType.Valid() {
		return "", fmt.Errorf("%w: input type must be 'keyword' or 'url'", shared.ErrInvalidInput)
	}
	if userInput == "" {
		return "", fmt.Errorf("%w: user input cannot be empty", shared.ErrInvalidInput)
	}

	var resp startResponse
	body := startRequest{InputType: string(inputType), UserInput: userInput}
	if err := s.doRequest(ctx, http.MethodPost, "/api/workflow/start", body, &resp); err != nil {
		return "", err
	}

	if resp.SessionID == "" {
		return "", fmt.Errorf("%w: backend returned empty session id", shared.ErrAPIRequest)
	}

	return resp.SessionID, nil
}

// Status fetches the full status payload for a session.
func (s *DiscoveryService) Status(ctx context.Context, sessionID string) (*models.WorkflowStatus, error) {
	var status models.WorkflowStatus
	path := fmt.Sprintf("/api/workflow/status/%s", sessionID)
	if err := s.doRequest(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ConfirmProduct submits the selected product candidate index.
func (s *DiscoveryService) ConfirmProduct(ctx context.Context, sessionID string, index int) error {
	path := fmt.Sprintf("/api/workflow/confirm-product/%s", sessionID)
	return s.doRequest(ctx, http.MethodPost, path, confirmProductRequest{ProductIndex: index}, nil)
}

// ConfirmVariant submits the selected variant candidate index.
func (s *DiscoveryService) ConfirmVariant(ctx context.Context, sessionID string, index int) error {
	path := fmt.Sprintf("/api/workflow/confirm-variant/%s", sessionID)
	return s.doRequest(ctx, http.MethodPost, path, confirmVariantRequest{VariantIndex: index}, nil)
}

// ConfirmExtraction accepts or rejects the details extracted from a URL.
func (s *DiscoveryService) ConfirmExtraction(ctx context.Context, sessionID string, confirmed bool) error {
	path := fmt.Sprintf("/api/workflow/confirm-extraction/%s", sessionID)
	return s.doRequest(ctx, http.MethodPost, path, confirmExtractionRequest{Confirmed: confirmed}, nil)
}

// Results fetches the final results of a completed session.
func (s *DiscoveryService) Results(ctx context.Context, sessionID string) (*ResultsResponse, error) {
	var resp ResultsResponse
	path := fmt.Sprintf("/api/workflow/results/%s", sessionID)
	if err := s.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks that the backend is reachable.
func (s *DiscoveryService) Health(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	if err := s.doRequest(ctx, http.MethodGet, "/", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
