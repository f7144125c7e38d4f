package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"bizgifts-bot/internal/cache"
	"bizgifts-bot/internal/model"
	"bizgifts-bot/internal/repository"
)

func newTestConnectionService(t *testing.T) *ConnectionService {
	t.Helper()

	repo := repository.NewFileConnectionRepository(filepath.Join(t.TempDir(), "connections.json"))
	memCache := cache.NewMemoryCache()
	t.Cleanup(func() { memCache.Close() })

	svc := NewConnectionService(repo, memCache)
	if svc == nil {
		t.Fatal("NewConnectionService returned nil")
	}
	return svc
}

func TestRecordThenResolve(t *testing.T) {
	t.Parallel()

	svc := newTestConnectionService(t)
	ctx := context.Background()

	rec := model.ConnectionRecord{UserID: 1, ConnectionID: "abc", Username: "alice"}
	if err := svc.Record(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := svc.Resolve(ctx, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "abc" {
		t.Fatalf("connection_id = %q, want %q", got, "abc")
	}
}

func TestResolveUnknownUser(t *testing.T) {
	t.Parallel()

	svc := newTestConnectionService(t)
	if _, err := svc.Resolve(context.Background(), 99); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("error = %v, want %v", err, ErrNotConnected)
	}
}

func TestReconnectionReplacesStoredConnection(t *testing.T) {
	t.Parallel()

	svc := newTestConnectionService(t)
	ctx := context.Background()

	if err := svc.Record(ctx, model.ConnectionRecord{UserID: 1, ConnectionID: "first"}); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := svc.Record(ctx, model.ConnectionRecord{UserID: 1, ConnectionID: "second"}); err != nil {
		t.Fatalf("second record: %v", err)
	}

	got, err := svc.Resolve(ctx, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "second" {
		t.Fatalf("connection_id = %q, want %q", got, "second")
	}

	count, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestClearAllDropsCachedLookups(t *testing.T) {
	t.Parallel()

	svc := newTestConnectionService(t)
	ctx := context.Background()

	if err := svc.Record(ctx, model.ConnectionRecord{UserID: 1, ConnectionID: "abc"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Warm the cache.
	if _, err := svc.Resolve(ctx, 1); err != nil {
		t.Fatalf("resolve before clear: %v", err)
	}

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}

	count, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after clear = %d, want 0", count)
	}

	if _, err := svc.Resolve(ctx, 1); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("resolve after clear error = %v, want %v", err, ErrNotConnected)
	}
}

func TestAdminGate(t *testing.T) {
	t.Parallel()

	gate := NewAdminGate(42)
	if !gate.IsOperator(42) {
		t.Fatal("operator not recognized")
	}
	if gate.IsOperator(43) {
		t.Fatal("non-operator passed the gate")
	}

	// Unconfigured gate rejects everyone, including user ID 0.
	empty := NewAdminGate(0)
	if empty.IsOperator(0) {
		t.Fatal("unconfigured gate let user 0 through")
	}
}
