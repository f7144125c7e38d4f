package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"bizgifts-bot/internal/model"
)

// FileConnectionRepository implements ConnectionRepository on a single JSON
// file holding the whole record collection. Every Upsert is a read-modify-write
// of the entire file. A process-local mutex serializes access within this
// process; two processes sharing the file race with last-write-wins semantics.
// An unreadable or missing file is treated as an empty collection, never as a
// fatal error - this layer favors availability over loss-free storage.
type FileConnectionRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileConnectionRepository creates a JSON-file-backed connection repository.
func NewFileConnectionRepository(path string) *FileConnectionRepository {
	log.Printf("[FileConnectionRepository] Initialized with file: %s", path)
	return &FileConnectionRepository{path: path}
}

// load reads the full collection. Corrupt or missing files read as empty.
func (r *FileConnectionRepository) load() []model.ConnectionRecord {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[FileConnectionRepository] WARN: read %s failed, treating as empty: %v", r.path, err)
		}
		return nil
	}

	var records []model.ConnectionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("[FileConnectionRepository] WARN: parse %s failed, treating as empty: %v", r.path, err)
		return nil
	}
	return records
}

// save writes the full collection back to the file.
func (r *FileConnectionRepository) save(records []model.ConnectionRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode connections: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write connections file: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the connection record for a user in place.
func (r *FileConnectionRepository) Upsert(ctx context.Context, rec model.ConnectionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.UpdatedAt = time.Now().UTC()

	records := r.load()
	replaced := false
	for i := range records {
		if records[i].UserID == rec.UserID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	return r.save(records)
}

// Lookup returns the stored connection ID for a user.
func (r *FileConnectionRepository) Lookup(ctx context.Context, userID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.load() {
		if rec.UserID == userID {
			return rec.ConnectionID, nil
		}
	}
	return "", ErrNotFound
}

// Count returns the number of stored connection records.
func (r *FileConnectionRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.load()), nil
}

// Clear replaces the file content with an empty collection.
func (r *FileConnectionRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.save([]model.ConnectionRecord{}); err != nil {
		return err
	}
	log.Printf("[FileConnectionRepository] Cleared all connection records")
	return nil
}

// Close is a no-op for the file-backed repository.
func (r *FileConnectionRepository) Close() error {
	return nil
}

// Ensure FileConnectionRepository implements ConnectionRepository
var _ ConnectionRepository = (*FileConnectionRepository)(nil)
