package models

import "time"

// UnverifiedEmail is a pending email verification request. CodeHash is nil
// until the user asks for a short code; it then holds the salted hash of
// the code, never the code itself.
type UnverifiedEmail struct {
	TokenHash []byte
	Email     string
	CodeHash  *string
	CreatedAt time.Time
}
