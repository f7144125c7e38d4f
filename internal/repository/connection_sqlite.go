package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"bizgifts-bot/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteConnectionRepository implements ConnectionRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteConnectionRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteConnectionRepository creates a new SQLite connection repository.
// dbPath is the path to the SQLite database file (e.g., "./data/connections.db")
func NewSQLiteConnectionRepository(dbPath string) (*SQLiteConnectionRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteConnectionRepository] Initialized with database: %s", dbPath)
	return &SQLiteConnectionRepository{db: db}, nil
}

// createSQLiteTables creates the business_connections table.
func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS business_connections (
		user_id INTEGER PRIMARY KEY,
		connection_id TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(query)
	return err
}

// Upsert inserts or replaces the connection record for a user.
func (r *SQLiteConnectionRepository) Upsert(ctx context.Context, rec model.ConnectionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO business_connections (user_id, connection_id, username, first_name, last_name, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(user_id) DO UPDATE SET
			connection_id = excluded.connection_id,
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = datetime('now')`

	_, err := r.db.ExecContext(ctx, query, rec.UserID, rec.ConnectionID, rec.Username, rec.FirstName, rec.LastName)
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}
	return nil
}

// Lookup returns the stored connection ID for a user.
func (r *SQLiteConnectionRepository) Lookup(ctx context.Context, userID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT connection_id FROM business_connections WHERE user_id = ?`

	var connectionID string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&connectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to lookup connection: %w", err)
	}

	return connectionID, nil
}

// Count returns the number of stored connection records.
func (r *SQLiteConnectionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM business_connections").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count connections: %w", err)
	}
	return count, nil
}

// Clear removes every stored connection record.
func (r *SQLiteConnectionRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, "DELETE FROM business_connections")
	if err != nil {
		return fmt.Errorf("failed to clear connections: %w", err)
	}

	deleted, _ := result.RowsAffected()
	log.Printf("[SQLiteConnectionRepository] Cleared %d connection records", deleted)
	return nil
}

// Close closes the database connection.
func (r *SQLiteConnectionRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteConnectionRepository implements ConnectionRepository
var _ ConnectionRepository = (*SQLiteConnectionRepository)(nil)
