package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"bizgifts-bot/internal/model"
)

func openTempSQLite(t *testing.T) *SQLiteConnectionRepository {
	t.Helper()

	repo, err := NewSQLiteConnectionRepository(filepath.Join(t.TempDir(), "connections.db"))
	if err != nil {
		t.Fatalf("open sqlite repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteUpsertThenLookup(t *testing.T) {
	t.Parallel()

	repo := openTempSQLite(t)
	rec := model.ConnectionRecord{
		UserID:       1,
		ConnectionID: "abc",
		Username:     "alice",
		FirstName:    "Alice",
	}
	if err := repo.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Lookup(context.Background(), 1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != "abc" {
		t.Fatalf("connection_id = %q, want %q", got, "abc")
	}
}

func TestSQLiteLookupUnknownReturnsNotFound(t *testing.T) {
	t.Parallel()

	repo := openTempSQLite(t)
	if _, err := repo.Lookup(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup error = %v, want %v", err, ErrNotFound)
	}
}

func TestSQLiteUpsertReplacesInPlace(t *testing.T) {
	t.Parallel()

	repo := openTempSQLite(t)
	ctx := context.Background()

	first := model.ConnectionRecord{UserID: 7, ConnectionID: "conn-1", Username: "old"}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := model.ConnectionRecord{UserID: 7, ConnectionID: "conn-2", Username: "new"}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	got, err := repo.Lookup(ctx, 7)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != "conn-2" {
		t.Fatalf("connection_id = %q, want %q", got, "conn-2")
	}
}

func TestSQLiteUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := openTempSQLite(t)
	ctx := context.Background()

	rec := model.ConnectionRecord{UserID: 3, ConnectionID: "same"}
	for i := 0; i < 3; i++ {
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestSQLiteClearEmptiesRegistry(t *testing.T) {
	t.Parallel()

	repo := openTempSQLite(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		rec := model.ConnectionRecord{UserID: id, ConnectionID: "conn"}
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert %d: %v", id, err)
		}
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after clear = %d, want 0", count)
	}

	if _, err := repo.Lookup(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup after clear error = %v, want %v", err, ErrNotFound)
	}
}
