package models

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestResultItem(t *testing.T) {
	t.Run("DisplayPrice", func(t *testing.T) {
		t.Run("Prefers Per-Unit Price", func(t *testing.T) {
			item := ResultItem{Price: strPtr("299.00"), PerUnitPrice: strPtr("74.75")}
			if got := item.DisplayPrice(); got != "74.75" {
				t.Errorf("expected per-unit price '74.75', got %q", got)
			}
		})

		t.Run("Falls Back To Price", func(t *testing.T) {
			item := ResultItem{Price: strPtr("299.00")}
			if got := item.DisplayPrice(); got != "299.00" {
				t.Errorf("expected price '299.00', got %q", got)
			}
		})

		t.Run("Empty When Neither Set", func(t *testing.T) {
			if got := (ResultItem{}).DisplayPrice(); got != "" {
				t.Errorf("expected empty price, got %q", got)
			}
		})
	})

	t.Run("ProductType", func(t *testing.T) {
		cases := []struct {
			raw  string
			want ProductType
		}{
			{`"individual"`, ProductTypeIndividual},
			{`"bulk"`, ProductTypeBulk},
			{`"combo"`, ProductTypeBulk},
			{`"something-else"`, ProductTypeIndividual},
		}

		for _, tc := range cases {
			var pt ProductType
			if err := json.Unmarshal([]byte(tc.raw), &pt); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.raw, err)
			}
			if pt != tc.want {
				t.Errorf("%s: expected %q, got %q", tc.raw, tc.want, pt)
			}
		}
	})
}

func TestParseProgressEvent(t *testing.T) {
	t.Run("Log Event", func(t *testing.T) {
		data := []byte(`{"type":"log","data":{"stage":"url_discovery","message":"Discovering URLs","status":"started","timestamp":"2026-01-10T12:00:00"}}`)
		ev, err := ParseProgressEvent(data)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.Kind != EventLog {
			t.Errorf("expected kind log, got %q", ev.Kind)
		}
		if ev.Log == nil || ev.Log.Stage != "url_discovery" {
			t.Errorf("expected log stage 'url_discovery', got %+v", ev.Log)
		}
	})

	t.Run("Status Event", func(t *testing.T) {
		data := []byte(`{"type":"status","data":{"status":"waiting_confirmation","current_stage":"product_confirmation","needs_product_confirmation":true,"needs_variant_confirmation":false,"needs_url_extraction_confirmation":false}}`)
		ev, err := ParseProgressEvent(data)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.Kind != EventStatus {
			t.Errorf("expected kind status, got %q", ev.Kind)
		}
		if ev.Status == nil || !ev.Status.NeedsProductConfirmation {
			t.Error("expected needs_product_confirmation to be set")
		}
		if !ev.Status.NeedsConfirmation() {
			t.Error("expected NeedsConfirmation to report true")
		}
	})

	t.Run("Complete Event", func(t *testing.T) {
		data := []byte(`{"type":"complete","data":{"results":[{"product_name":"Curl Shampoo","platform":"BigBasket","url":"https://example.com/p/1","price":"299.00","per_unit_price":"1.50","product_type":"individual"},{"product_name":"Curl Shampoo 3x","platform":"Amazon","url":"https://example.com/p/2","product_type":"combo"}]}}`)
		ev, err := ParseProgressEvent(data)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.Kind != EventComplete {
			t.Errorf("expected kind complete, got %q", ev.Kind)
		}
		if len(ev.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(ev.Results))
		}
		if ev.Results[1].ProductType != ProductTypeBulk {
			t.Errorf("expected combo mapped to bulk, got %q", ev.Results[1].ProductType)
		}
	})

	t.Run("Error Event", func(t *testing.T) {
		data := []byte(`{"type":"error","data":{"status":"failed","results":null,"error":"site unreachable"}}`)
		ev, err := ParseProgressEvent(data)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.Kind != EventError {
			t.Errorf("expected kind error, got %q", ev.Kind)
		}
		if ev.Err != "site unreachable" {
			t.Errorf("expected error 'site unreachable', got %q", ev.Err)
		}
	})

	t.Run("Error Event With Top-Level Message", func(t *testing.T) {
		// Session expiry is emitted without a data payload.
		data := []byte(`{"type":"error","message":"Session expired"}`)
		ev, err := ParseProgressEvent(data)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.Err != "Session expired" {
			t.Errorf("expected 'Session expired', got %q", ev.Err)
		}
	})

	t.Run("Unknown Event Type", func(t *testing.T) {
		if _, err := ParseProgressEvent([]byte(`{"type":"heartbeat","data":{}}`)); err == nil {
			t.Error("expected error for unknown event type")
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		if _, err := ParseProgressEvent([]byte(`{"type":`)); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}

func TestInputType(t *testing.T) {
	if !InputKeyword.Valid() || !InputURL.Valid() {
		t.Error("expected keyword and url to be valid input types")
	}
	if InputType("barcode").Valid() {
		t.Error("expected unknown input type to be invalid")
	}
}
