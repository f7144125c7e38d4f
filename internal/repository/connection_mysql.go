package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"bizgifts-bot/internal/model"
)

// MySQLConnectionRepository implements ConnectionRepository using MySQL.
// The *sql.DB is owned by the caller (shared with other repositories).
type MySQLConnectionRepository struct {
	db *sql.DB
}

// NewMySQLConnectionRepository creates a new MySQL connection repository.
func NewMySQLConnectionRepository(db *sql.DB) (*MySQLConnectionRepository, error) {
	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &MySQLConnectionRepository{db: db}, nil
}

// createMySQLTables creates the business_connections table.
func createMySQLTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS business_connections (
		user_id BIGINT PRIMARY KEY,
		connection_id VARCHAR(255) NOT NULL,
		username VARCHAR(255) NOT NULL DEFAULT '',
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL
	)`
	_, err := db.Exec(query)
	return err
}

// Upsert inserts or replaces the connection record for a user.
func (r *MySQLConnectionRepository) Upsert(ctx context.Context, rec model.ConnectionRecord) error {
	query := `
		INSERT INTO business_connections (user_id, connection_id, username, first_name, last_name, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			connection_id = VALUES(connection_id),
			username = VALUES(username),
			first_name = VALUES(first_name),
			last_name = VALUES(last_name),
			updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, rec.UserID, rec.ConnectionID, rec.Username, rec.FirstName, rec.LastName)
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}
	return nil
}

// Lookup returns the stored connection ID for a user.
func (r *MySQLConnectionRepository) Lookup(ctx context.Context, userID int64) (string, error) {
	query := `SELECT connection_id FROM business_connections WHERE user_id = ? LIMIT 1`

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
func (r *MySQLConnectionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM business_connections").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count connections: %w", err)
	}
	return count, nil
}

// Clear removes every stored connection record.
func (r *MySQLConnectionRepository) Clear(ctx context.Context) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM business_connections")
	if err != nil {
		return fmt.Errorf("failed to clear connections: %w", err)
	}

	deleted, _ := result.RowsAffected()
	log.Printf("[MySQLConnectionRepository] Cleared %d connection records", deleted)
	return nil
}

// Close is a no-op; the underlying *sql.DB is owned by the caller.
func (r *MySQLConnectionRepository) Close() error {
	return nil
}

// Ensure MySQLConnectionRepository implements ConnectionRepository
var _ ConnectionRepository = (*MySQLConnectionRepository)(nil)
