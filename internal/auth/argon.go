package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters sized for a self-hosted server on modest hardware.
const (
	hashMemoryKiB  uint32 = 64 * 1024
	hashPasses     uint32 = 3
	hashThreads    uint8  = 4
	hashSaltBytes         = 16
	hashKeyBytes   uint32 = 32
	maxPasswordLen        = 1024 // cap so hashing cannot be abused to burn CPU
)

var b64 = base64.RawStdEncoding

// HashPassword hashes a password with Argon2id and returns the standard
// $argon2id$... encoded form, which records the parameters alongside the
// salt and digest so they can change later without invalidating old hashes.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > maxPasswordLen {
		return "", errors.New("password exceeds maximum length")
	}

	salt := make([]byte, hashSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, hashPasses, hashMemoryKiB, hashThreads, hashKeyBytes)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, hashMemoryKiB, hashPasses, hashThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword checks a password against an encoded Argon2id hash.
// Malformed hashes verify as false rather than erroring, so callers cannot
// tell a bad password from a corrupt stored hash.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if len(password) > maxPasswordLen {
		return false, nil
	}

	stored, err := parseEncodedHash(encodedHash)
	if err != nil {
		return false, nil //nolint:nilerr // malformed hash reads as mismatch
	}

	//nolint:gosec // digest length fits uint32, it was produced by IDKey
	candidate := argon2.IDKey([]byte(password), stored.salt,
		stored.passes, stored.memoryKiB, stored.threads, uint32(len(stored.key)))

	return subtle.ConstantTimeCompare(stored.key, candidate) == 1, nil
}

type encodedHash struct {
	memoryKiB uint32
	passes    uint32
	threads   uint8
	salt      []byte
	key       []byte
}

func parseEncodedHash(s string) (*encodedHash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 {
		return nil, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("incompatible version: %d", version)
	}

	h := &encodedHash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memoryKiB, &h.passes, &h.threads); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	var err error
	if h.salt, err = b64.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	if h.key, err = b64.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("invalid digest encoding: %w", err)
	}

	return h, nil
}
