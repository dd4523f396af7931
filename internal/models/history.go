package models

import "time"

// Search statuses recorded in history.
const (
	SearchRunning   = "running"
	SearchCompleted = "completed"
	SearchFailed    = "failed"
	SearchRejected  = "rejected"
)

// SearchRecord is one locally persisted search session.
//
// History is written by the client as sessions start and finish; the backend
// keeps its own tracking and is never consulted for it.
type SearchRecord struct {
	ID           string
	Sequence     int
	SessionID    string
	InputType    InputType
	UserInput    string
	Status       string
	ResultCount  int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Validate checks the record's invariants before persistence.
func (s *SearchRecord) Validate() error {
	if s.ID == "" {
		return ValidationError{Field: "id"}
	}
	if s.SessionID == "" {
		return ValidationError{Field: "session_id"}
	}
	if !s.InputType.Valid() {
		return ValidationError{Field: "input_type"}
	}
	if s.UserInput == "" {
		return ValidationError{Field: "user_input"}
	}
	return nil
}

// ValidationError reports a missing or invalid persisted field.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return "invalid or missing field: " + e.Field
}
