package models

import (
	"encoding/json"
	"fmt"
)

// EventKind tags a progress stream event.
type EventKind string

const (
	EventLog      EventKind = "log"
	EventStatus   EventKind = "status"
	EventComplete EventKind = "complete"
	EventError    EventKind = "error"
)

// StatusFlags is the payload of a status event.
// It only signals which confirmation (if any) the workflow is waiting on.
type StatusFlags struct {
	Status                         string `json:"status"`
	CurrentStage                   string `json:"current_stage"`
	NeedsProductConfirmation       bool   `json:"needs_product_confirmation"`
	NeedsVariantConfirmation       bool   `json:"needs_variant_confirmation"`
	NeedsURLExtractionConfirmation bool   `json:"needs_url_extraction_confirmation"`
}

// NeedsConfirmation reports whether any confirmation flag is set.
func (s StatusFlags) NeedsConfirmation() bool {
	return s.NeedsProductConfirmation || s.NeedsVariantConfirmation || s.NeedsURLExtractionConfirmation
}

// ProgressEvent is the tagged union carried on the per-session progress stream.
// Exactly one payload field is populated, matching Kind.
type ProgressEvent struct {
	Kind    EventKind
	Log     *LogEntry
	Status  *StatusFlags
	Results []ResultItem
	Err     string
}

// eventEnvelope mirrors the wire shape of one SSE data payload: {"type": ..., "data": ...}.
// The session-expiry path puts the message at the top level instead of in data.
type eventEnvelope struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type completePayload struct {
	Results []ResultItem `json:"results"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// ParseProgressEvent decodes one SSE data payload into a ProgressEvent.
func ParseProgressEvent(data []byte) (ProgressEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ProgressEvent{}, fmt.Errorf("failed to decode event envelope: %w", err)
	}

	switch EventKind(env.Type) {
	case EventLog:
		var entry LogEntry
		if err := json.Unmarshal(env.Data, &entry); err != nil {
			return ProgressEvent{}, fmt.Errorf("failed to decode log payload: %w", err)
		}
		return ProgressEvent{Kind: EventLog, Log: &entry}, nil

	case EventStatus:
		var flags StatusFlags
		if err := json.Unmarshal(env.Data, &flags); err != nil {
			return ProgressEvent{}, fmt.Errorf("failed to decode status payload: %w", err)
		}
		return ProgressEvent{Kind: EventStatus, Status: &flags}, nil

	case EventComplete:
		var payload completePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return ProgressEvent{}, fmt.Errorf("failed to decode complete payload: %w", err)
		}
		return ProgressEvent{Kind: EventComplete, Results: payload.Results}, nil

	case EventError:
		if len(env.Data) > 0 {
			var payload errorPayload
			if err := json.Unmarshal(env.Data, &payload); err == nil && payload.Error != "" {
				return ProgressEvent{Kind: EventError, Err: payload.Error}, nil
			}
		}
		if env.Message != "" {
			return ProgressEvent{Kind: EventError, Err: env.Message}, nil
		}
		return ProgressEvent{Kind: EventError, Err: "workflow failed"}, nil

	default:
		return ProgressEvent{}, fmt.Errorf("unknown event type %q", env.Type)
	}
}
