package model

import "time"

// ConnectionRecord maps a Telegram user to the business connection handle the
// platform issued for that user's account. UserID is the unique key; the
// connection ID is opaque and never interpreted locally.
type ConnectionRecord struct {
	UserID       int64     `json:"user_id"`
	ConnectionID string    `json:"business_connection_id"`
	Username     string    `json:"username,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}
