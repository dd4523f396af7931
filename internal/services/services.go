// package services defines the client interfaces for the Product Discovery API
package services

import (
	"context"
	"fmt"
	"net/http"

	"scout/internal/models"
)

// WorkflowAPI defines the workflow endpoints the session controller drives.
type WorkflowAPI interface {
	// Start begins a new workflow session and returns the server-issued session id.
	Start(ctx context.Context, inputType models.InputType, userInput string) (string, error)

	// Status fetches the full status payload including candidates and extracted details.
	Status(ctx context.Context, sessionID string) (*models.WorkflowStatus, error)

	// ConfirmProduct submits the selected product candidate index.
	ConfirmProduct(ctx context.Context, sessionID string, index int) error

	// ConfirmVariant submits the selected variant candidate index.
	ConfirmVariant(ctx context.Context, sessionID string, index int) error

	// ConfirmExtraction accepts or rejects the details extracted from a URL.
	ConfirmExtraction(ctx context.Context, sessionID string, confirmed bool) error
}

// Stream is a unidirectional server-to-client event channel scoped to one session.
type Stream interface {
	// Events returns the channel of decoded progress events.
	// The channel closes on terminal events, transport failure, or Close.
	Events() <-chan models.ProgressEvent

	// Err returns the transport error that closed the stream, if any.
	// Only meaningful after the events channel has closed.
	Err() error

	// Close tears down the subscription. Safe to call multiple times.
	Close()
}

// StreamOpener opens a progress stream for a session.
type StreamOpener interface {
	Progress(ctx context.Context, sessionID string) (Stream, error)
}

// Credentials attaches authentication headers to an outgoing request.
// Implementations decide between bearer token and guest identifier.
type Credentials interface {
	Apply(req *http.Request)
}

// APIError represents a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API error: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API error: status %d", e.StatusCode)
}
