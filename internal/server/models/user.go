// Package models holds the record types persisted by the server repositories.
package models

import "time"

// User is a registered account. Email doubles as the login identifier and is
// unique across all users; the match is exact (case-sensitive).
// PasswordHash is the encoded salted credential, never a plaintext password.
type User struct {
	ID           string
	Name         string
	Email        string
	About        string
	PasswordHash string
	CreatedAt    time.Time
}
