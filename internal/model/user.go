// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// PasswordHash holds an Argon2id PHC string and is never serialized.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
