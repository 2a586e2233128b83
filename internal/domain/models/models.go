// Package models defines the domain records for the archive backend.
//
// The models are organized into the following files:
// - models.go: Accounts and sessions
// - archive.go: Cars, images and galleries
// - production.go: Inspections, deliverables, contacts, events, projects and inventory
// - system.go: Saved views, scheduled jobs and notifications
package models

import "time"

// User is an account that can sign in to the archive
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Session is a DB-backed login session. Its ID is the JWT jti claim.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Token        string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	IsRevoked    bool      `json:"is_revoked"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}
