package models

import (
	"encoding/json"
	"strings"
)

// ProductType classifies a result as a single item or a bulk/combo listing.
type ProductType string

const (
	ProductTypeIndividual ProductType = "individual"
	ProductTypeBulk       ProductType = "bulk"
)

// UnmarshalJSON normalizes the backend's product_type values.
// The workflow emits "combo" for multi-pack listings; the client treats it as bulk.
// Missing or unknown values default to individual.
func (p *ProductType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch strings.ToLower(raw) {
	case "bulk", "combo":
		*p = ProductTypeBulk
	default:
		*p = ProductTypeIndividual
	}
	return nil
}

// ResultItem represents one ranked price result from a completed workflow.
type ResultItem struct {
	ProductName  string      `json:"product_name"`
	Platform     string      `json:"platform"`
	URL          string      `json:"url"`
	Price        *string     `json:"price,omitempty"`
	PerUnitPrice *string     `json:"per_unit_price,omitempty"`
	ProductType  ProductType `json:"product_type,omitempty"`
}

// DisplayPrice returns the price to show for this result.
// Per-unit price is preferred over the listing price when both are present.
func (r ResultItem) DisplayPrice() string {
	if r.PerUnitPrice != nil && *r.PerUnitPrice != "" {
		return *r.PerUnitPrice
	}
	if r.Price != nil && *r.Price != "" {
		return *r.Price
	}
	return ""
}

// ProductCandidate is one product the user may confirm during product disambiguation.
// The positional index in the candidate slice is the confirmation key.
type ProductCandidate struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// VariantCandidate is one variant (size, count, flavor) the user may confirm.
type VariantCandidate struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// ExtractedDetails holds the brand/product/variant parsed from a submitted URL,
// pending the user's accept/reject decision.
type ExtractedDetails struct {
	Brand   string `json:"brand"`
	Product string `json:"product"`
	Variant string `json:"variant"`
}

// LogEntry is one append-only progress log line from the workflow.
type LogEntry struct {
	Stage     string `json:"stage"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// WorkflowStatus is the full status payload for a session from GET /api/workflow/status/{id}.
//
// The SSE status event only signals THAT confirmation is needed; this payload
// carries the candidates and extracted details themselves.
type WorkflowStatus struct {
	SessionID                      string             `json:"session_id"`
	Status                         string             `json:"status"` // running, waiting_confirmation, completed, failed
	CurrentStage                   string             `json:"current_stage"`
	NeedsProductConfirmation       bool               `json:"needs_product_confirmation"`
	NeedsVariantConfirmation       bool               `json:"needs_variant_confirmation"`
	NeedsURLExtractionConfirmation bool               `json:"needs_url_extraction_confirmation"`
	ProductCandidates              []ProductCandidate `json:"product_candidates"`
	VariantCandidates              []VariantCandidate `json:"variant_candidates"`
	ExtractedDetails               *ExtractedDetails  `json:"extracted_details"`
	FinalResults                   []ResultItem       `json:"final_results"`
	ErrorMessage                   string             `json:"error_message"`
}

// InputType enumerates the two accepted search inputs.
type InputType string

const (
	InputKeyword InputType = "keyword"
	InputURL     InputType = "url"
)

// Valid reports whether the input type is one the backend accepts.
func (t InputType) Valid() bool {
	return t == InputKeyword || t == InputURL
}

// TokenResponse is the backend's bearer token grant for phone login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	PhoneNumber string `json:"phone_number"`
}

// UserInfo is the authenticated user's profile from GET /auth/me.
type UserInfo struct {
	PhoneNumber   string `json:"phone_number"`
	CountryCode   string `json:"country_code"`
	IsActive      bool   `json:"is_active"`
	TotalSessions int    `json:"total_sessions"`
}

// SessionLimit reports whether another search session is allowed.
type SessionLimit struct {
	CanSearch         bool   `json:"can_search"`
	SessionsUsed      int    `json:"sessions_used"`
	SessionsRemaining int    `json:"sessions_remaining"`
	RequiresAuth      bool   `json:"requires_auth"`
	Message           string `json:"message"`
}
