package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"scout/internal/models"
	"scout/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newRecord(sessionID string) *models.SearchRecord {
	return &models.SearchRecord{
		SessionID: sessionID,
		InputType: models.InputKeyword,
		UserInput: "wireless mouse",
	}
}

func TestHistoryRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := newRecord("abc123")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create search: %v", err)
		}

		if record.ID == "" {
			t.Error("search ID should be set after creation")
		}
		if record.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", record.Sequence)
		}
		if record.Status != models.SearchRunning {
			t.Errorf("expected status running, got %s", record.Status)
		}
	})

	t.Run("Create Rejects Invalid Record", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := &models.SearchRecord{SessionID: "abc123", InputType: "barcode", UserInput: "x"}

		if err := repo.Create(record); err == nil {
			t.Error("expected validation error for unknown input type")
		}
	})

	t.Run("Duplicate Session ID Rejected", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		if err := repo.Create(newRecord("abc123")); err != nil {
			t.Fatalf("failed to create search: %v", err)
		}
		if err := repo.Create(newRecord("abc123")); err == nil {
			t.Error("expected unique constraint violation")
		}
	})

	t.Run("Get And GetBySessionID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := newRecord("abc123")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create search: %v", err)
		}

		byID, err := repo.Get(record.ID)
		if err != nil {
			t.Fatalf("failed to get search: %v", err)
		}
		if byID.SessionID != "abc123" || byID.UserInput != "wireless mouse" {
			t.Errorf("unexpected record: %+v", byID)
		}

		bySession, err := repo.GetBySessionID("abc123")
		if err != nil {
			t.Fatalf("failed to get search by session: %v", err)
		}
		if bySession.ID != record.ID {
			t.Errorf("expected ID %s, got %s", record.ID, bySession.ID)
		}
	})

	t.Run("List Newest First", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		for i := 0; i < 3; i++ {
			if err := repo.Create(newRecord(fmt.Sprintf("session-%d", i))); err != nil {
				t.Fatalf("failed to create search %d: %v", i, err)
			}
		}

		records, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list searches: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		if records[0].SessionID != "session-2" {
			t.Errorf("expected newest first, got %s", records[0].SessionID)
		}

		limited, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list with limit: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 records with limit, got %d", len(limited))
		}
	})

	t.Run("Status Transitions", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)

		t.Run("MarkCompleted", func(t *testing.T) {
			record := newRecord("done-session")
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create search: %v", err)
			}
			if err := repo.MarkCompleted("done-session", 5); err != nil {
				t.Fatalf("failed to mark completed: %v", err)
			}

			got, _ := repo.GetBySessionID("done-session")
			if got.Status != models.SearchCompleted || got.ResultCount != 5 {
				t.Errorf("unexpected record after completion: %+v", got)
			}
		})

		t.Run("MarkFailed", func(t *testing.T) {
			record := newRecord("failed-session")
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create search: %v", err)
			}
			if err := repo.MarkFailed("failed-session", "site unreachable"); err != nil {
				t.Fatalf("failed to mark failed: %v", err)
			}

			got, _ := repo.GetBySessionID("failed-session")
			if got.Status != models.SearchFailed || got.ErrorMessage != "site unreachable" {
				t.Errorf("unexpected record after failure: %+v", got)
			}
		})

		t.Run("MarkRejected", func(t *testing.T) {
			record := newRecord("rejected-session")
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create search: %v", err)
			}
			if err := repo.MarkRejected("rejected-session"); err != nil {
				t.Fatalf("failed to mark rejected: %v", err)
			}

			got, _ := repo.GetBySessionID("rejected-session")
			if got.Status != models.SearchRejected {
				t.Errorf("expected rejected status, got %s", got.Status)
			}
		})

		t.Run("Unknown Session", func(t *testing.T) {
			if err := repo.MarkCompleted("missing", 0); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := newRecord("abc123")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create search: %v", err)
		}

		if err := repo.Delete(record.ID); err != nil {
			t.Fatalf("failed to delete search: %v", err)
		}

		if _, err := repo.Get(record.ID); err == nil {
			t.Error("expected error when getting deleted search")
		}

		if err := repo.Delete(record.ID); err == nil {
			t.Error("expected error deleting twice")
		}
	})

	t.Run("Results Round Trip", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHistoryRepository(db)
		record := newRecord("abc123")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create search: %v", err)
		}

		price := "₹499"
		perUnit := "₹99.80"
		results := []models.ResultItem{
			{ProductName: "Mouse B", Platform: "Amazon", URL: "https://example.com/b", Price: &price, PerUnitPrice: &perUnit, ProductType: models.ProductTypeBulk},
			{ProductName: "Mouse A", Platform: "Flipkart", URL: "https://example.com/a"},
		}

		if err := repo.SaveResults(record.ID, results); err != nil {
			t.Fatalf("failed to save results: %v", err)
		}

		cached, err := repo.ResultsFor(record.ID)
		if err != nil {
			t.Fatalf("failed to load results: %v", err)
		}
		if len(cached) != 2 {
			t.Fatalf("expected 2 results, got %d", len(cached))
		}
		if cached[0].ProductName != "Mouse B" {
			t.Errorf("expected ranked order preserved, got %s first", cached[0].ProductName)
		}
		if cached[0].DisplayPrice() != "₹99.80" {
			t.Errorf("expected per-unit price preferred, got %s", cached[0].DisplayPrice())
		}
		if cached[0].ProductType != models.ProductTypeBulk {
			t.Errorf("expected bulk type, got %s", cached[0].ProductType)
		}
		if cached[1].Price != nil {
			t.Error("expected nil price for second result")
		}

		// Saving again replaces the snapshot instead of appending.
		if err := repo.SaveResults(record.ID, results[:1]); err != nil {
			t.Fatalf("failed to re-save results: %v", err)
		}
		cached, err = repo.ResultsFor(record.ID)
		if err != nil {
			t.Fatalf("failed to reload results: %v", err)
		}
		if len(cached) != 1 {
			t.Errorf("expected snapshot replaced, got %d results", len(cached))
		}
	})
}
