package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/spotkit/internal/auth"
	"github.com/desertthunder/spotkit/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(access, refresh string) auth.TokenRecord {
	return auth.TokenRecord{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Scope:        "user-read-private",
		GrantTime:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ExpiresIn:    time.Hour,
	}
}

func TestTokenRepository(t *testing.T) {
	t.Run("Save And Load", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))
		rec := testRecord("access-1", "refresh-1")

		if err := repo.Save("client", rec); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		got, err := repo.Load("client")
		if err != nil {
			t.Fatalf("failed to load token: %v", err)
		}
		if got.AccessToken != rec.AccessToken || got.RefreshToken != rec.RefreshToken {
			t.Errorf("expected %+v, got %+v", rec, got)
		}
		if got.TokenType != "Bearer" || got.Scope != rec.Scope {
			t.Errorf("unexpected metadata %+v", got)
		}
		if !got.GrantTime.Equal(rec.GrantTime) || got.ExpiresIn != time.Hour {
			t.Errorf("expected grant %v + %v, got %v + %v", rec.GrantTime, rec.ExpiresIn, got.GrantTime, got.ExpiresIn)
		}
		if !got.ExpirationTime().Equal(rec.ExpirationTime()) {
			t.Errorf("expected expiry %v, got %v", rec.ExpirationTime(), got.ExpirationTime())
		}
	})

	t.Run("Save Upserts Per Client", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTokenRepository(db)

		if err := repo.Save("client", testRecord("access-1", "refresh-1")); err != nil {
			t.Fatal(err)
		}
		if err := repo.Save("client", testRecord("access-2", "refresh-2")); err != nil {
			t.Fatal(err)
		}
		if err := repo.Save("other", testRecord("access-x", "refresh-x")); err != nil {
			t.Fatal(err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM tokens").Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 2 {
			t.Errorf("expected 2 rows, got %d", count)
		}

		got, _ := repo.Load("client")
		if got.AccessToken != "access-2" || got.RefreshToken != "refresh-2" {
			t.Errorf("expected rotated pair, got %+v", got)
		}
	})

	t.Run("Empty Refresh Token Keeps Stored One", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.Save("client", testRecord("access-1", "refresh-1")); err != nil {
			t.Fatal(err)
		}
		if err := repo.Save("client", testRecord("access-2", "")); err != nil {
			t.Fatal(err)
		}

		got, _ := repo.Load("client")
		if got.AccessToken != "access-2" || got.RefreshToken != "refresh-1" {
			t.Errorf("expected new access token with old refresh token, got %+v", got)
		}
	})

	t.Run("Save Validation", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.Save("", testRecord("a", "r")); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument for client id, got %v", err)
		}
		if err := repo.Save("client", auth.TokenRecord{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument for access token, got %v", err)
		}
	})

	t.Run("Load Not Found", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		_, err := repo.Load("missing")
		if !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected ErrTokenNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.Save("client", testRecord("a", "r")); err != nil {
			t.Fatal(err)
		}
		if err := repo.RecordRefresh("client", nil); err != nil {
			t.Fatal(err)
		}

		if err := repo.Delete("client"); err != nil {
			t.Fatalf("failed to delete token: %v", err)
		}
		if _, err := repo.Load("client"); !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected token to be gone, got %v", err)
		}
		events, err := repo.RecentEvents("client", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 0 {
			t.Errorf("expected refresh history to be removed, got %d events", len(events))
		}

		if err := repo.Delete("client"); !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected ErrTokenNotFound on second delete, got %v", err)
		}
	})

	t.Run("Refresh Events", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.RecordRefresh("client", nil); err != nil {
			t.Fatal(err)
		}
		if err := repo.RecordRefresh("client", errors.New("status 503")); err != nil {
			t.Fatal(err)
		}
		if err := repo.RecordRefresh("other", nil); err != nil {
			t.Fatal(err)
		}

		events, err := repo.RecentEvents("client", 0)
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Succeeded || events[0].Error != "status 503" {
			t.Errorf("expected newest failure first, got %+v", events[0])
		}
		if !events[1].Succeeded || events[1].Error != "" {
			t.Errorf("expected older success second, got %+v", events[1])
		}
	})

	t.Run("Prune Events", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		for i := range 5 {
			if err := repo.RecordRefresh("client", fmt.Errorf("failure %d", i)); err != nil {
				t.Fatal(err)
			}
		}

		n, err := repo.PruneEvents("client", 2)
		if err != nil {
			t.Fatalf("failed to prune: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3 pruned, got %d", n)
		}

		events, _ := repo.RecentEvents("client", 10)
		if len(events) != 2 || events[0].Error != "failure 4" {
			t.Errorf("expected the newest 2 events to remain, got %+v", events)
		}
	})
}
