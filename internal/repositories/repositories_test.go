package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Load empty", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		if _, err := repo.Load(ctx); !errors.Is(err, shared.ErrNoToken) {
			t.Errorf("expected ErrNoToken, got %v", err)
		}
	})

	t.Run("Save and Load", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		token := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", Expiry: expiry}

		if err := repo.Save(ctx, token); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		got, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load token: %v", err)
		}
		if got.AccessToken != "at" || got.RefreshToken != "rt" || !got.Expiry.Equal(expiry) {
			t.Errorf("unexpected token: %+v", got)
		}
	})

	t.Run("Save overwrites single row", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCredentialRepository(db)

		if err := repo.Save(ctx, &oauth2.Token{AccessToken: "first"}); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}
		if err := repo.Save(ctx, &oauth2.Token{AccessToken: "second", RefreshToken: "rt"}); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM credentials").Scan(&count); err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 row, got %d", count)
		}

		got, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load token: %v", err)
		}
		if got.AccessToken != "second" {
			t.Errorf("expected latest token, got %q", got.AccessToken)
		}
	})

	t.Run("Save nil", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		if err := repo.Save(ctx, nil); !errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Load corrupt", func(t *testing.T) {
		db := setupTestDB(t)
		if _, err := db.Exec("INSERT INTO credentials (id, provider, token) VALUES (1, 'google', 'not json')"); err != nil {
			t.Fatalf("failed to seed row: %v", err)
		}

		if _, err := NewCredentialRepository(db).Load(ctx); !errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		if err := repo.Clear(ctx); err != nil {
			t.Fatalf("clearing empty table should succeed: %v", err)
		}
		if err := repo.Save(ctx, &oauth2.Token{AccessToken: "at"}); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}
		if err := repo.Clear(ctx); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if _, err := repo.Load(ctx); !errors.Is(err, shared.ErrNoToken) {
			t.Errorf("expected ErrNoToken after clear, got %v", err)
		}
	})

	t.Run("UpdatedAt", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		if _, err := repo.UpdatedAt(ctx); !errors.Is(err, shared.ErrNoToken) {
			t.Errorf("expected ErrNoToken, got %v", err)
		}
		if err := repo.Save(ctx, &oauth2.Token{AccessToken: "at"}); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}
		updated, err := repo.UpdatedAt(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.IsZero() {
			t.Error("expected non-zero update time")
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCredentialRepository(db)
		db.Close()

		if _, err := repo.Load(ctx); err == nil || errors.Is(err, shared.ErrNoToken) {
			t.Errorf("expected a database error, got %v", err)
		}
		if err := repo.Save(ctx, &oauth2.Token{AccessToken: "at"}); err == nil {
			t.Error("expected save to fail on closed database")
		}
	})
}
