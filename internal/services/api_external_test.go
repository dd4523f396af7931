// These subtests live in an external test package because they use the
// shared test helpers in scout/internal/testing, which imports
// scout/internal/services and would otherwise create an import cycle.
package services_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"scout/internal/services"
	tu "scout/internal/testing"
)

func TestAPIServiceTransportFailures(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			srv := services.NewAPIService("http://example.com", client, nil)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Error("expected error for failed request")
			}
			if !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := services.NewAPIService("http://example.com", client, nil)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Error("expected error for failed body read")
			}
			if !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})
	})
}
