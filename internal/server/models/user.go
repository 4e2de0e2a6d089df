package models

import (
	"time"

	"github.com/filehaven/filehaven/internal/ident"
)

type User struct {
	ID           ident.ID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
