package models

import (
	"time"

	"github.com/filehaven/filehaven/internal/ident"
)

// File is stored object metadata. Content lives in the S3-compatible
// backend under StorageKey; Uploaded flips once the client completes the
// presigned upload.
type File struct {
	ID          ident.ID
	UserID      ident.ID
	Name        string
	Size        int64
	ContentType string
	StorageKey  string
	Uploaded    bool
	CreatedAt   time.Time
}
