// Package ident implements fixed-length cryptographically random
// identifiers with a compact base64url text form. Short IDs key rows such
// as users and files; long IDs act as bearer tokens whose digests key
// sessions and pending verification requests.
package ident

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// Identifier lengths in bytes.
const (
	// UserIDLength is the length of user and file IDs.
	UserIDLength = 8

	// TokenLength is the length of bearer tokens (sessions, email
	// verification, password reset).
	TokenLength = 128
)

var (
	// ErrInvalidEncoding reports text that is not valid unpadded base64url.
	ErrInvalidEncoding = errors.New("invalid base64url encoding")

	// ErrLengthMismatch reports text that decodes to the wrong number of bytes.
	ErrLengthMismatch = errors.New("decoded length mismatch")
)

// ID is a fixed-length random identifier. The zero value is unusable; IDs
// are created with New or Parse.
type ID []byte

// New returns an ID of the given length with every byte drawn from the
// operating system's CSPRNG. A failure of the random source is an
// infrastructure error, not a business error.
func New(length int) (ID, error) {
	id := make(ID, length)
	if _, err := rand.Read(id); err != nil {
		return nil, fmt.Errorf("random source failed: %w", err)
	}
	return id, nil
}

// Reroll replaces the ID's bytes in place with fresh random ones, reusing
// the backing storage. Only IDs that have not been persisted yet may be
// rerolled; collision-retry loops call this after a primary-key conflict.
func (id ID) Reroll() error {
	if _, err := rand.Read(id); err != nil {
		return fmt.Errorf("random source failed: %w", err)
	}
	return nil
}

// String encodes the ID as unpadded base64url.
func (id ID) String() string {
	return base64.RawURLEncoding.EncodeToString(id)
}

// Parse decodes an unpadded base64url string into an ID of exactly the
// expected length. Malformed text yields ErrInvalidEncoding; text decoding
// to any other byte count yields ErrLengthMismatch. Input is never
// truncated or padded.
func Parse(s string, length int) (ID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if len(raw) != length {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrLengthMismatch, length, len(raw))
	}
	return ID(raw), nil
}

// Equal reports whether two IDs carry identical bytes.
func (id ID) Equal(other ID) bool {
	return bytes.Equal(id, other)
}
