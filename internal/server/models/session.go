package models

import (
	"time"

	"github.com/filehaven/filehaven/internal/ident"
)

// Session is a sign-in session. Only the SHA-256 digest of the bearer
// token is stored; the raw token leaves the server exactly once, in the
// sign-in response.
type Session struct {
	TokenHash []byte
	UserID    ident.ID
	CreatedAt time.Time
}
