package model

import "time"

// Session is the identity attached to an authenticated request.
// It is stored in Redis keyed by a digest of the opaque session token
// and expires with the token.
type Session struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	IssuedAt time.Time `json:"issued_at"`
}
