// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"scout/internal/models"
	"scout/internal/services"
)

// MockWorkflowAPI is a test double for [services.WorkflowAPI] with
// per-method hooks and call counters.
type MockWorkflowAPI struct {
	StartFunc             func(ctx context.Context, inputType models.InputType, userInput string) (string, error)
	StatusFunc            func(ctx context.Context, sessionID string) (*models.WorkflowStatus, error)
	ConfirmProductFunc    func(ctx context.Context, sessionID string, index int) error
	ConfirmVariantFunc    func(ctx context.Context, sessionID string, index int) error
	ConfirmExtractionFunc func(ctx context.Context, sessionID string, confirmed bool) error

	StartCalls             int
	StatusCalls            int
	ConfirmProductCalls    int
	ConfirmVariantCalls    int
	ConfirmExtractionCalls int
}

var _ services.WorkflowAPI = (*MockWorkflowAPI)(nil)

func (m *MockWorkflowAPI) Start(ctx context.Context, inputType models.InputType, userInput string) (string, error) {
	m.StartCalls++
	if m.StartFunc != nil {
		return m.StartFunc(ctx, inputType, userInput)
	}
	return "session-1", nil
}

func (m *MockWorkflowAPI) Status(ctx context.Context, sessionID string) (*models.WorkflowStatus, error) {
	m.StatusCalls++
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, sessionID)
	}
	return &models.WorkflowStatus{SessionID: sessionID}, nil
}

func (m *MockWorkflowAPI) ConfirmProduct(ctx context.Context, sessionID string, index int) error {
	m.ConfirmProductCalls++
	if m.ConfirmProductFunc != nil {
		return m.ConfirmProductFunc(ctx, sessionID, index)
	}
	return nil
}

func (m *MockWorkflowAPI) ConfirmVariant(ctx context.Context, sessionID string, index int) error {
	m.ConfirmVariantCalls++
	if m.ConfirmVariantFunc != nil {
		return m.ConfirmVariantFunc(ctx, sessionID, index)
	}
	return nil
}

func (m *MockWorkflowAPI) ConfirmExtraction(ctx context.Context, sessionID string, confirmed bool) error {
	m.ConfirmExtractionCalls++
	if m.ConfirmExtractionFunc != nil {
		return m.ConfirmExtractionFunc(ctx, sessionID, confirmed)
	}
	return nil
}

// ScriptedStream is a test double for [services.Stream] fed by the test.
type ScriptedStream struct {
	Ch       chan models.ProgressEvent
	StreamErr error

	mu         sync.Mutex
	closeCalls int
}

var _ services.Stream = (*ScriptedStream)(nil)

func NewScriptedStream(buffer int) *ScriptedStream {
	return &ScriptedStream{Ch: make(chan models.ProgressEvent, buffer)}
}

func (s *ScriptedStream) Events() <-chan models.ProgressEvent { return s.Ch }

func (s *ScriptedStream) Err() error { return s.StreamErr }

func (s *ScriptedStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	if s.closeCalls == 1 {
		close(s.Ch)
	}
}

// CloseCalls returns how many times Close has been invoked.
func (s *ScriptedStream) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

// StubStreamOpener is a test double for [services.StreamOpener] handing out
// pre-built streams in order.
type StubStreamOpener struct {
	Streams []*ScriptedStream
	Err     error

	OpenCalls      int
	LastSessionIDs []string
}

var _ services.StreamOpener = (*StubStreamOpener)(nil)

func (o *StubStreamOpener) Progress(ctx context.Context, sessionID string) (services.Stream, error) {
	o.OpenCalls++
	o.LastSessionIDs = append(o.LastSessionIDs, sessionID)
	if o.Err != nil {
		return nil, o.Err
	}
	if len(o.Streams) == 0 {
		return nil, errors.New("no scripted stream available")
	}
	stream := o.Streams[0]
	o.Streams = o.Streams[1:]
	return stream, nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter is a Writer that always fails, for exercising output errors.
type FWriter struct{}

func (f *FWriter) Write([]byte) (int, error) { return 0, errors.New("write error") }

// LimitedWriter fails after a fixed number of successful writes.
type LimitedWriter struct {
	writesAllowed int
	writesDone    int
	inner         io.Writer
}

func NewLimitedWriter(writesAllowed, writesDone int, inner io.Writer) LimitedWriter {
	return LimitedWriter{writesAllowed: writesAllowed, writesDone: writesDone, inner: inner}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.writesDone >= l.writesAllowed {
		return 0, errors.New("write limit reached")
	}
	l.writesDone++
	return l.inner.Write(p)
}

// FCloser is a ReadCloser that fails on read, for exercising body read errors.
type FCloser struct{}

func (f *FCloser) Read([]byte) (int, error) { return 0, errors.New("read error") }

func (f *FCloser) Close() error { return nil }

// MockTracker is a test double for the controller's session tracker.
type MockTracker struct {
	TrackErr    error
	CompleteErr error

	TrackCalls    int
	CompleteCalls int
	TrackedIDs    []string
	CompletedIDs  []string
}

func (t *MockTracker) TrackSession(ctx context.Context, sessionID string, inputType models.InputType, userInput string) error {
	t.TrackCalls++
	t.TrackedIDs = append(t.TrackedIDs, sessionID)
	return t.TrackErr
}

func (t *MockTracker) CompleteSession(ctx context.Context, sessionID string) error {
	t.CompleteCalls++
	t.CompletedIDs = append(t.CompletedIDs, sessionID)
	return t.CompleteErr
}
