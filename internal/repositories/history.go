package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"scout/internal/models"
	"scout/internal/shared"
)

// HistoryRepository persists search sessions and their cached results.
//
// Handles search CRUD with soft delete support plus result snapshots for
// completed sessions.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a new search record with generated ID and sequence.
// Status starts as running; CreatedAt/UpdatedAt are set here.
func (r *HistoryRepository) Create(record *models.SearchRecord) error {
	sequence, err := NextSequence(r.db, "searches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	record.ID = shared.GenerateID()
	record.Sequence = sequence
	if record.Status == "" {
		record.Status = models.SearchRunning
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO searches (id, sequence, session_id, input_type, user_input, status, result_count, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID,
		record.Sequence,
		record.SessionID,
		string(record.InputType),
		record.UserInput,
		record.Status,
		record.ResultCount,
		record.ErrorMessage,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert search: %w", err)
	}

	return nil
}

// Get retrieves a search by ID, excluding soft-deleted searches
func (r *HistoryRepository) Get(id string) (*models.SearchRecord, error) {
	query := `
		SELECT id, sequence, session_id, input_type, user_input, status, result_count, error_message, created_at, updated_at, deleted_at
		FROM searches
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySessionID retrieves a search by its backend session id
func (r *HistoryRepository) GetBySessionID(sessionID string) (*models.SearchRecord, error) {
	query := `
		SELECT id, sequence, session_id, input_type, user_input, status, result_count, error_message, created_at, updated_at, deleted_at
		FROM searches
		WHERE session_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, sessionID))
}

// List retrieves the most recent searches, newest first.
// limit <= 0 returns everything.
func (r *HistoryRepository) List(limit int) ([]*models.SearchRecord, error) {
	query := `
		SELECT id, sequence, session_id, input_type, user_input, status, result_count, error_message, created_at, updated_at, deleted_at
		FROM searches
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var records []*models.SearchRecord
	for rows.Next() {
		record, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// MarkCompleted marks a search completed and records its result count.
func (r *HistoryRepository) MarkCompleted(sessionID string, resultCount int) error {
	return r.markFinished(sessionID, models.SearchCompleted, resultCount, "")
}

// MarkFailed marks a search failed with the given error message.
func (r *HistoryRepository) MarkFailed(sessionID, errorMessage string) error {
	return r.markFinished(sessionID, models.SearchFailed, 0, errorMessage)
}

// MarkRejected marks a URL search whose extraction the user rejected.
func (r *HistoryRepository) MarkRejected(sessionID string) error {
	return r.markFinished(sessionID, models.SearchRejected, 0, "")
}

func (r *HistoryRepository) markFinished(sessionID, status string, resultCount int, errorMessage string) error {
	query := `
		UPDATE searches
		SET status = ?, result_count = ?, error_message = ?, updated_at = ?
		WHERE session_id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, status, resultCount, errorMessage, time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update search: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, sessionID)
	}

	return nil
}

// Delete soft-deletes a search by ID
func (r *HistoryRepository) Delete(id string) error {
	query := `
		UPDATE searches
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("search not found or already deleted: %s", id)
	}

	return nil
}

// SaveResults stores the final result list of a completed search, replacing
// any previously cached snapshot.
func (r *HistoryRepository) SaveResults(searchID string, results []models.ResultItem) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM results WHERE search_id = ?", searchID); err != nil {
		return fmt.Errorf("failed to clear previous results: %w", err)
	}

	query := `
		INSERT INTO results (id, search_id, position, product_name, platform, url, price, per_unit_price, product_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	for position, item := range results {
		productType := item.ProductType
		if productType == "" {
			productType = models.ProductTypeIndividual
		}

		_, err := tx.Exec(query,
			shared.GenerateID(),
			searchID,
			position,
			item.ProductName,
			item.Platform,
			item.URL,
			item.Price,
			item.PerUnitPrice,
			string(productType),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result %d: %w", position, err)
		}
	}

	return tx.Commit()
}

// ResultsFor returns the cached results of a search in ranked order.
func (r *HistoryRepository) ResultsFor(searchID string) ([]models.ResultItem, error) {
	query := `
		SELECT product_name, platform, url, price, per_unit_price, product_type
		FROM results
		WHERE search_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var items []models.ResultItem
	for rows.Next() {
		var (
			item        models.ResultItem
			price       sql.NullString
			perUnit     sql.NullString
			productType string
		)

		if err := rows.Scan(&item.ProductName, &item.Platform, &item.URL, &price, &perUnit, &productType); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		if price.Valid {
			item.Price = &price.String
		}
		if perUnit.Valid {
			item.PerUnitPrice = &perUnit.String
		}
		item.ProductType = models.ProductType(productType)

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// scanOne scans a single row into a [models.SearchRecord]
func (r *HistoryRepository) scanOne(row *sql.Row) (*models.SearchRecord, error) {
	var (
		record       models.SearchRecord
		inputType    string
		errorMessage sql.NullString
		deletedAt    sql.NullTime
	)

	err := row.Scan(&record.ID, &record.Sequence, &record.SessionID, &inputType, &record.UserInput,
		&record.Status, &record.ResultCount, &errorMessage, &record.CreatedAt, &record.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("search not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan search: %w", err)
	}

	record.InputType = models.InputType(inputType)
	if errorMessage.Valid {
		record.ErrorMessage = errorMessage.String
	}
	if deletedAt.Valid {
		record.DeletedAt = &deletedAt.Time
	}

	return &record, nil
}

// scanRow scans a row from [sql.Rows] into a [models.SearchRecord]
func (r *HistoryRepository) scanRow(rows *sql.Rows) (*models.SearchRecord, error) {
	var (
		record       models.SearchRecord
		inputType    string
		errorMessage sql.NullString
		deletedAt    sql.NullTime
	)

	err := rows.Scan(&record.ID, &record.Sequence, &record.SessionID, &inputType, &record.UserInput,
		&record.Status, &record.ResultCount, &errorMessage, &record.CreatedAt, &record.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan search: %w", err)
	}

	record.InputType = models.InputType(inputType)
	if errorMessage.Valid {
		record.ErrorMessage = errorMessage.String
	}
	if deletedAt.Valid {
		record.DeletedAt = &deletedAt.Time
	}

	return &record, nil
}
