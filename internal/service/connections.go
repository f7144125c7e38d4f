package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bizgifts-bot/internal/cache"
	"bizgifts-bot/internal/model"
	"bizgifts-bot/internal/repository"
)

// ErrNotConnected indicates the user has no business connection on record.
var ErrNotConnected = errors.New("business account not connected")

// connCacheTTL bounds how long a resolved connection ID may be served from
// cache after the underlying record changed.
const connCacheTTL = 5 * time.Minute

// ConnectionService handles the user-to-business-connection registry.
// Lookups are read-through cached; the repository stays the source of truth.
type ConnectionService struct {
	repo  repository.ConnectionRepository
	cache cache.Cache
}

// NewConnectionService creates a new connection service.
// Returns nil if repo is nil (required dependency). cache may be nil.
func NewConnectionService(repo repository.ConnectionRepository, c cache.Cache) *ConnectionService {
	if repo == nil {
		return nil
	}
	return &ConnectionService{repo: repo, cache: c}
}

func connCacheKey(userID int64) string {
	return fmt.Sprintf("conn:%d", userID)
}

// Record stores or replaces the connection record for a user.
func (s *ConnectionService) Record(ctx context.Context, rec model.ConnectionRecord) error {
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, connCacheKey(rec.UserID), []byte(rec.ConnectionID), connCacheTTL); err != nil {
			log.Printf("[ConnectionService] WARN: cache set failed for user %d: %v", rec.UserID, err)
		}
	}

	log.Printf("[ConnectionService] Connection saved/updated for user %d", rec.UserID)
	return nil
}

// Resolve returns the connection ID for a user, or ErrNotConnected when no
// record exists.
func (s *ConnectionService) Resolve(ctx context.Context, userID int64) (string, error) {
	if s.cache != nil {
		if value, err := s.cache.Get(ctx, connCacheKey(userID)); err == nil {
			return string(value), nil
		}
	}

	connectionID, err := s.repo.Lookup(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotConnected
		}
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, connCacheKey(userID), []byte(connectionID), connCacheTTL); err != nil {
			log.Printf("[ConnectionService] WARN: cache set failed for user %d: %v", userID, err)
		}
	}
	return connectionID, nil
}

// Count returns the number of stored connection records.
func (s *ConnectionService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// ClearAll removes every connection record and drops cached lookups.
// Irreversible; callers must gate this behind AdminGate.
func (s *ConnectionService) ClearAll(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			log.Printf("[ConnectionService] WARN: cache clear failed: %v", err)
		}
	}

	log.Printf("[ConnectionService] All connections cleared")
	return nil
}
