// SSE progress stream client for /api/workflow/progress/{session_id}
package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"scout/internal/models"
	"scout/internal/shared"
)

// ProgressStream is one live subscription to a session's progress events.
//
// Events are decoded and delivered on a buffered channel read by the UI loop.
// The channel closes when a terminal event arrives, the transport fails, or
// Close is called; after that, Err reports any transport failure.
type ProgressStream struct {
	events chan models.ProgressEvent
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

// Progress opens the SSE subscription for the given session.
// Satisfies [StreamOpener].
func (s *DiscoveryService) Progress(ctx context.Context, sessionID string) (Stream, error) {
	return s.OpenProgress(ctx, sessionID)
}

// OpenProgress opens the SSE subscription and starts the reader goroutine.
func (s *DiscoveryService) OpenProgress(ctx context.Context, sessionID string) (*ProgressStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	path := fmt.Sprintf("/api/workflow/progress/%s", sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if s.creds != nil {
		s.creds.Apply(req)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	stream := &ProgressStream{
		events: make(chan models.ProgressEvent, s.bufferSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go stream.read(ctx, resp)

	return stream, nil
}

// Events returns the channel of decoded progress events.
func (p *ProgressStream) Events() <-chan models.ProgressEvent {
	return p.events
}

// Err returns the transport error that closed the stream, if any.
func (p *ProgressStream) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close cancels the subscription and drops the connection. Idempotent.
func (p *ProgressStream) Close() {
	p.closeOnce.Do(func() {
		p.cancel()
		<-p.done
	})
}

// read consumes the SSE body line by line and dispatches complete events.
//
// The backend only uses data: lines; multi-line data fields are joined with
// newlines per the SSE framing rules, and comment lines are ignored.
func (p *ProgressStream) read(ctx context.Context, resp *http.Response) {
	defer close(p.events)
	defer close(p.done)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data bytes.Buffer

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			// Blank line terminates one event.
			if data.Len() > 0 {
				p.dispatch(ctx, data.Bytes())
				data.Reset()
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		if value, ok := strings.CutPrefix(line, "data:"); ok {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(value, " "))
		}
	}

	// Trailing event without terminating blank line.
	if data.Len() > 0 {
		p.dispatch(ctx, data.Bytes())
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		p.mu.Lock()
		p.err = fmt.Errorf("%w: %v", shared.ErrStreamClosed, err)
		p.mu.Unlock()
	}
}

// dispatch decodes one event payload and delivers it unless the stream is shutting down.
// Undecodable payloads are skipped; the stream itself stays healthy.
func (p *ProgressStream) dispatch(ctx context.Context, payload []byte) {
	ev, err := models.ParseProgressEvent(payload)
	if err != nil {
		return
	}

	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}
