package models

import (
	"time"

	"github.com/filehaven/filehaven/internal/ident"
)

type PasswordReset struct {
	TokenHash []byte
	UserID    ident.ID
	CreatedAt time.Time
}
