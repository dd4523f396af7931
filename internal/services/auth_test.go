package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"scout/internal/models"
	"scout/internal/shared"
)

func writeTokenFile(t *testing.T, dir string, token *oauth2.Token) string {
	t.Helper()
	path := filepath.Join(dir, "token.json")
	data, err := json.Marshal(token)
	if err != nil {
		t.Fatalf("failed to encode token: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write token file: %v", err)
	}
	return path
}

func TestAuthService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Loads Persisted Token", func(t *testing.T) {
			path := writeTokenFile(t, t.TempDir(), &oauth2.Token{
				AccessToken: "jwt-token",
				TokenType:   "bearer",
				Expiry:      time.Now().Add(time.Hour),
			})

			svc := NewAuthService(AuthOpts{TokenPath: path})
			if !svc.Authenticated() {
				t.Error("expected loaded token to authenticate")
			}
		})

		t.Run("Expired Token Does Not Authenticate", func(t *testing.T) {
			path := writeTokenFile(t, t.TempDir(), &oauth2.Token{
				AccessToken: "jwt-token",
				TokenType:   "bearer",
				Expiry:      time.Now().Add(-time.Hour),
			})

			svc := NewAuthService(AuthOpts{TokenPath: path})
			if svc.Authenticated() {
				t.Error("expected expired token to not authenticate")
			}
		})

		t.Run("Missing Token File Is Not An Error", func(t *testing.T) {
			svc := NewAuthService(AuthOpts{
				TokenPath: filepath.Join(t.TempDir(), "missing.json"),
				GuestID:   "guest-1",
			})
			if svc.Authenticated() {
				t.Error("expected no authentication without a token")
			}
			if svc.GuestID() != "guest-1" {
				t.Errorf("expected guest id 'guest-1', got %s", svc.GuestID())
			}
		})
	})

	t.Run("Apply", func(t *testing.T) {
		t.Run("Bearer Token Wins", func(t *testing.T) {
			path := writeTokenFile(t, t.TempDir(), &oauth2.Token{
				AccessToken: "jwt-token",
				TokenType:   "bearer",
				Expiry:      time.Now().Add(time.Hour),
			})

			svc := NewAuthService(AuthOpts{TokenPath: path, GuestID: "guest-1"})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			svc.Apply(req)

			if got := req.Header.Get("Authorization"); got != "Bearer jwt-token" {
				t.Errorf("expected bearer header, got %q", got)
			}
			if req.Header.Get("X-Guest-Id") != "" {
				t.Error("expected no guest header when authenticated")
			}
		})

		t.Run("Guest Fallback", func(t *testing.T) {
			svc := NewAuthService(AuthOpts{GuestID: "guest-1"})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			svc.Apply(req)

			if req.Header.Get("Authorization") != "" {
				t.Error("expected no bearer header without a token")
			}
			if got := req.Header.Get("X-Guest-Id"); got != "guest-1" {
				t.Errorf("expected guest header 'guest-1', got %q", got)
			}
		})
	})

	t.Run("LoginPhone", func(t *testing.T) {
		t.Run("Rejects Empty Number Locally", func(t *testing.T) {
			svc := NewAuthService(AuthOpts{})
			if _, err := svc.LoginPhone(context.Background(), ""); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Stores And Persists Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/login-phone" {
					t.Errorf("expected path '/auth/login-phone', got %s", r.URL.Path)
				}
				body, _ := io.ReadAll(r.Body)
				var req map[string]string
				json.Unmarshal(body, &req)
				if req["phone_number"] != "+919876543210" {
					t.Errorf("expected phone number in body, got %v", req)
				}

				json.NewEncoder(w).Encode(models.TokenResponse{
					AccessToken: "fresh-jwt",
					TokenType:   "bearer",
					ExpiresIn:   3600,
					PhoneNumber: "+919876543210",
				})
			}))
			defer server.Close()

			tokenPath := filepath.Join(t.TempDir(), "token.json")
			svc := NewAuthService(AuthOpts{BaseURL: server.URL, TokenPath: tokenPath})

			grant, err := svc.LoginPhone(context.Background(), "+919876543210")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if grant.AccessToken != "fresh-jwt" {
				t.Errorf("expected access token 'fresh-jwt', got %s", grant.AccessToken)
			}
			if !svc.Authenticated() {
				t.Error("expected service authenticated after login")
			}

			// A fresh client picks the token up from disk.
			reloaded := NewAuthService(AuthOpts{BaseURL: server.URL, TokenPath: tokenPath})
			if !reloaded.Authenticated() {
				t.Error("expected persisted token to survive restart")
			}
		})

		t.Run("Backend Rejection", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid phone number"})
			}))
			defer server.Close()

			svc := NewAuthService(AuthOpts{BaseURL: server.URL})
			_, err := svc.LoginPhone(context.Background(), "+10000000000")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if !strings.Contains(apiErr.Error(), "Invalid phone number") {
				t.Errorf("expected backend detail, got %v", apiErr)
			}
			if svc.Authenticated() {
				t.Error("expected no token after failed login")
			}
		})
	})

	t.Run("Logout", func(t *testing.T) {
		t.Run("Requires Authentication", func(t *testing.T) {
			svc := NewAuthService(AuthOpts{GuestID: "guest-1"})
			if err := svc.Logout(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Clears Token And File", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/logout" {
					t.Errorf("expected path '/auth/logout', got %s", r.URL.Path)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			path := writeTokenFile(t, t.TempDir(), &oauth2.Token{
				AccessToken: "jwt-token",
				TokenType:   "bearer",
				Expiry:      time.Now().Add(time.Hour),
			})
			svc := NewAuthService(AuthOpts{BaseURL: server.URL, TokenPath: path})

			if err := svc.Logout(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.Authenticated() {
				t.Error("expected token cleared after logout")
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("expected token file removed")
			}
		})
	})

	t.Run("Me", func(t *testing.T) {
		t.Run("Requires Authentication", func(t *testing.T) {
			svc := NewAuthService(AuthOpts{GuestID: "guest-1"})
			if _, err := svc.Me(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Fetches Profile", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer jwt-token" {
					t.Errorf("expected bearer header, got %q", r.Header.Get("Authorization"))
				}
				json.NewEncoder(w).Encode(models.UserInfo{
					PhoneNumber:   "+919876543210",
					IsActive:      true,
					TotalSessions: 7,
				})
			}))
			defer server.Close()

			path := writeTokenFile(t, t.TempDir(), &oauth2.Token{
				AccessToken: "jwt-token",
				TokenType:   "bearer",
				Expiry:      time.Now().Add(time.Hour),
			})
			svc := NewAuthService(AuthOpts{BaseURL: server.URL, TokenPath: path})

			user, err := svc.Me(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.TotalSessions != 7 {
				t.Errorf("expected 7 sessions, got %d", user.TotalSessions)
			}
		})
	})

	t.Run("CheckSessionLimit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/check-session-limit" {
				t.Errorf("expected path '/auth/check-session-limit', got %s", r.URL.Path)
			}
			if r.Header.Get("X-Guest-Id") != "guest-1" {
				t.Errorf("expected guest header, got %q", r.Header.Get("X-Guest-Id"))
			}
			json.NewEncoder(w).Encode(models.SessionLimit{
				CanSearch:         false,
				SessionsUsed:      3,
				SessionsRemaining: 0,
				RequiresAuth:      true,
				Message:           "Sign in to continue searching",
			})
		}))
		defer server.Close()

		svc := NewAuthService(AuthOpts{BaseURL: server.URL, GuestID: "guest-1"})
		limit, err := svc.CheckSessionLimit(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if limit.CanSearch || !limit.RequiresAuth {
			t.Errorf("unexpected limit payload: %+v", limit)
		}
	})

	t.Run("TrackSession", func(t *testing.T) {
		t.Run("Guest Includes UUID", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				var req map[string]string
				json.Unmarshal(body, &req)
				if req["guest_uuid"] != "guest-1" {
					t.Errorf("expected guest_uuid in body, got %v", req)
				}
				if req["session_id"] != "abc123" || req["search_type"] != "keyword" {
					t.Errorf("unexpected body: %v", req)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			svc := NewAuthService(AuthOpts{BaseURL: server.URL, GuestID: "guest-1"})
			if err := svc.TrackSession(context.Background(), "abc123", models.InputKeyword, "soap"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Authenticated Omits UUID", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				var req map[string]any
				json.Unmarshal(body, &req)
				if _, present := req["guest_uuid"]; present {
					t.Errorf("expected no guest_uuid for authenticated user, got %v", req)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			path := writeTokenFile(t, t.TempDir(), &oauth2.Token{
				AccessToken: "jwt-token",
				TokenType:   "bearer",
				Expiry:      time.Now().Add(time.Hour),
			})
			svc := NewAuthService(AuthOpts{BaseURL: server.URL, TokenPath: path, GuestID: "guest-1"})
			if err := svc.TrackSession(context.Background(), "abc123", models.InputKeyword, "soap"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})

	t.Run("CompleteSession", func(t *testing.T) {
		t.Run("Session ID As Query Parameter", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/complete-session" {
					t.Errorf("expected path '/auth/complete-session', got %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("session_id"); got != "abc123" {
					t.Errorf("expected session_id query 'abc123', got %q", got)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			svc := NewAuthService(AuthOpts{BaseURL: server.URL, GuestID: "guest-1"})
			if err := svc.CompleteSession(context.Background(), "abc123"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})
}
