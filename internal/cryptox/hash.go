// Package cryptox provides the hashing used to store secrets. Secrets are
// never persisted in plain text: high-entropy secrets (128-byte tokens) are
// stored as plain SHA-256 digests so rows can be looked up by digest, and
// low-entropy secrets (passwords, short codes) are stored as salted argon2id
// hashes in PHC string format.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters used for new hashes. Verification reads the
// parameters embedded in the PHC string instead.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLength   = 16
)

// HashUnsalted returns the SHA-256 digest of data. The output is
// deterministic, so it must only be applied to secrets with enough entropy
// that guessing from the digest is infeasible. Use HashSalted for passwords
// and short codes.
func HashUnsalted(data []byte) []byte {
	digest := sha256.Sum256(data)
	return digest[:]
}

// HashSalted hashes secret with argon2id under a fresh random salt and
// returns a PHC string embedding the algorithm parameters and salt, so no
// external state is needed to verify it later.
func HashSalted(secret []byte) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("random source failed: %w", err)
	}

	hash := argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifySalted reports whether secret matches the given PHC string. A
// malformed string yields false rather than an error, so callers cannot
// distinguish a bad record from a wrong secret.
func VerifySalted(secret []byte, phc string) bool {
	salt, hash, memory, time, threads, ok := decodePHC(phc)
	if !ok {
		return false
	}

	candidate := argon2.IDKey(secret, salt, time, memory, threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}

// decodePHC parses "$argon2id$v=19$m=...,t=...,p=...$<salt>$<hash>".
func decodePHC(phc string) (salt, hash []byte, memory, time uint32, threads uint8, ok bool) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, false
	}
	if memory == 0 || time == 0 || threads == 0 {
		return nil, nil, 0, 0, 0, false
	}

	var err error
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, 0, 0, 0, false
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(hash) == 0 {
		return nil, nil, 0, 0, 0, false
	}

	return salt, hash, memory, time, threads, true
}
