package cryptox

import (
	"crypto/rand"
	"fmt"
)

// shortCodeChars is the alphabet for short codes. `O` is excluded because
// it's often mistaken for `0`.
const shortCodeChars = "0123456789ABCDEFGHIJKLMNPQRSTUVWXYZ"

// ShortCodeLength is the length of codes returned by GenerateShortCode.
const ShortCodeLength = 6

// GenerateShortCode returns a short, human-typeable code drawn uniformly
// from shortCodeChars via rejection sampling over the CSPRNG. Codes are
// stored only as salted hashes, never in plain text.
func GenerateShortCode() (string, error) {
	// Largest multiple of the alphabet size below 256; bytes at or above it
	// are rejected to keep the distribution uniform.
	limit := byte(256 - 256%len(shortCodeChars))

	code := make([]byte, 0, ShortCodeLength)
	buf := make([]byte, 1)
	for len(code) < ShortCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("random source failed: %w", err)
		}
		if buf[0] >= limit {
			continue
		}
		code = append(code, shortCodeChars[int(buf[0])%len(shortCodeChars)])
	}

	return string(code), nil
}
