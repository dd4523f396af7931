// Auth collaborator client for the /auth endpoints
//
// Token issuance is the backend's job; this client only stores the bearer
// token and forwards it, falling back to the persistent guest identifier.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	"scout/internal/models"
	"scout/internal/shared"
)

// guestHeader is the header the backend reads for unauthenticated rate limiting.
const guestHeader = "X-Guest-Id"

// AuthService handles phone-based session authentication with guest fallback.
type AuthService struct {
	baseURL    string
	httpClient *http.Client
	tokenPath  string
	token      *oauth2.Token
	guestID    string
}

// AuthOpts contains construction options for [AuthService].
type AuthOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	TokenPath  string // where the bearer token is persisted as JSON
	GuestID    string // persistent guest UUID, sent when no valid token exists
}

// NewAuthService creates an auth client, loading any previously saved token.
func NewAuthService(opts AuthOpts) *AuthService {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8000"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	svc := &AuthService{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		tokenPath:  opts.TokenPath,
		guestID:    opts.GuestID,
	}

	if opts.TokenPath != "" {
		if token, err := loadToken(opts.TokenPath); err == nil {
			svc.token = token
		}
	}

	return svc
}

// Apply attaches authentication headers to an outgoing request.
// A valid bearer token wins; otherwise the guest identifier is sent.
// Satisfies [Credentials].
func (a *AuthService) Apply(req *http.Request) {
	if a.token != nil && a.token.Valid() {
		a.token.SetAuthHeader(req)
		return
	}
	if a.guestID != "" {
		req.Header.Set(guestHeader, a.guestID)
	}
}

// Authenticated reports whether a non-expired bearer token is loaded.
func (a *AuthService) Authenticated() bool {
	return a.token != nil && a.token.Valid()
}

// GuestID returns the guest identifier used when unauthenticated.
func (a *AuthService) GuestID() string {
	return a.guestID
}

type loginPhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type trackSessionRequest struct {
	SessionID   string `json:"session_id"`
	SearchType  string `json:"search_type"`
	SearchInput string `json:"search_input"`
	GuestUUID   string `json:"guest_uuid,omitempty"`
}

// doRequest performs a JSON request against an /auth endpoint with credentials attached.
func (a *AuthService) doRequest(ctx context.Context, method, path string, body any, result any) error {
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

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	a.Apply(req)

	resp, err := a.httpClient.Do(req)
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

// LoginPhone authenticates with an E.164 phone number and stores the issued token.
func (a *AuthService) LoginPhone(ctx context.Context, phoneNumber string) (*models.TokenResponse, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("%w: phone number cannot be empty", shared.ErrInvalidInput)
	}

	var grant models.TokenResponse
	if err := a.doRequest(ctx, http.MethodPost, "/auth/login-phone", loginPhoneRequest{PhoneNumber: phoneNumber}, &grant); err != nil {
		return nil, err
	}

	a.token = &oauth2.Token{
		AccessToken: grant.AccessToken,
		TokenType:   grant.TokenType,
		Expiry:      time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second),
	}

	if a.tokenPath != "" {
		if err := saveToken(a.tokenPath, a.token); err != nil {
			return &grant, fmt.Errorf("logged in but failed to persist token: %w", err)
		}
	}

	return &grant, nil
}

// Logout invalidates the session server-side and removes the stored token.
func (a *AuthService) Logout(ctx context.Context) error {
	if !a.Authenticated() {
		return shared.ErrNotAuthenticated
	}

	if err := a.doRequest(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}

	a.token = nil
	if a.tokenPath != "" {
		os.Remove(a.tokenPath)
	}

	return nil
}

// Me fetches the authenticated user's profile.
func (a *AuthService) Me(ctx context.Context) (*models.UserInfo, error) {
	if !a.Authenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	var user models.UserInfo
	if err := a.doRequest(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckSessionLimit reports whether another search session is allowed for
// the current identity (token or guest UUID).
func (a *AuthService) CheckSessionLimit(ctx context.Context) (*models.SessionLimit, error) {
	var limit models.SessionLimit
	if err := a.doRequest(ctx, http.MethodGet, "/auth/check-session-limit", nil, &limit); err != nil {
		return nil, err
	}
	return &limit, nil
}

// TrackSession records a started workflow session for rate limiting.
func (a *AuthService) TrackSession(ctx context.Context, sessionID string, inputType models.InputType, userInput string) error {
	body := trackSessionRequest{
		SessionID:   sessionID,
		SearchType:  string(inputType),
		SearchInput: userInput,
	}
	if !a.Authenticated() {
		body.GuestUUID = a.guestID
	}
	return a.doRequest(ctx, http.MethodPost, "/auth/track-session", body, nil)
}

// CompleteSession marks a tracked session as finished.
// The backend takes the id as a query parameter on this endpoint.
func (a *AuthService) CompleteSession(ctx context.Context, sessionID string) error {
	path := "/auth/complete-session?session_id=" + url.QueryEscape(sessionID)
	return a.doRequest(ctx, http.MethodPost, path, nil, nil)
}

// loadToken reads a persisted token from disk.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &token, nil
}

// saveToken writes the token to disk with owner-only permissions.
func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
