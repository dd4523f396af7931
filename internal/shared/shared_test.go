package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestShared(t *testing.T) {
	t.Run("GenerateID", func(t *testing.T) {
		first := GenerateID()
		second := GenerateID()

		if _, err := uuid.Parse(first); err != nil {
			t.Errorf("expected a valid UUID, got %q: %v", first, err)
		}
		if first == second {
			t.Error("expected unique identifiers")
		}
	})

	t.Run("ExpandPath", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}

		expanded := ExpandPath("~/.scout/token.json")
		expected := filepath.Join(home, ".scout", "token.json")
		if expanded != expected {
			t.Errorf("expected %q, got %q", expected, expanded)
		}

		if got := ExpandPath("/tmp/scout.db"); got != "/tmp/scout.db" {
			t.Errorf("absolute path should be unchanged, got %q", got)
		}
		if got := ExpandPath(""); got != "" {
			t.Errorf("empty path should be unchanged, got %q", got)
		}
	})

	t.Run("LoadGuestID", func(t *testing.T) {
		t.Run("generates and persists on first use", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ids", "guest_id")

			id, err := LoadGuestID(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, err := uuid.Parse(id); err != nil {
				t.Errorf("expected a valid UUID, got %q", id)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("expected persisted guest id: %v", err)
			}
			if string(data) != id {
				t.Errorf("persisted id %q does not match %q", data, id)
			}
		})

		t.Run("returns the same id on subsequent loads", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "guest_id")

			first, err := LoadGuestID(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			second, err := LoadGuestID(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if first != second {
				t.Errorf("guest id changed between loads: %q vs %q", first, second)
			}
		})

		t.Run("replaces a corrupt id file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "guest_id")
			if err := os.WriteFile(path, []byte("not-a-uuid"), 0600); err != nil {
				t.Fatalf("failed to write guest id: %v", err)
			}

			id, err := LoadGuestID(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, err := uuid.Parse(id); err != nil {
				t.Errorf("expected a valid UUID, got %q", id)
			}
		})
	})

	t.Run("NewLogger", func(t *testing.T) {
		output := &bytes.Buffer{}
		logger := NewLogger(output)

		logger.Info("session started", "session_id", "abc123")

		if output.Len() == 0 {
			t.Error("expected log output")
		}
		if !bytes.Contains(output.Bytes(), []byte("session started")) {
			t.Errorf("expected message in output, got %q", output.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "scout.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("stream opened")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected log file: %v", err)
		}
		if !bytes.Contains(data, []byte("stream opened")) {
			t.Errorf("expected message in log file, got %q", data)
		}
	})
}
