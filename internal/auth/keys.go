// Package auth provides password hashing, token issuance, and key bootstrap.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PASETO v4.local wants a 256-bit symmetric key, carried around hex-encoded.
const (
	keyBytes    = 32
	keyHexChars = keyBytes * 2
)

// decodeKeyHex validates and decodes a hex-encoded symmetric key.
func decodeKeyHex(keyHex string) ([]byte, error) {
	if len(keyHex) != keyHexChars {
		return nil, fmt.Errorf("key must be %d hex characters (%d bytes), got %d", keyHexChars, keyBytes, len(keyHex))
	}
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("key is not valid hex: %w", err)
	}
	return raw, nil
}

// LoadOrGenerateKey returns the server's token key, reading
// <dataPath>/auth.key when present and otherwise generating a fresh key and
// persisting it there. Losing the file invalidates all outstanding access
// tokens but nothing else.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, "auth.key")

	//#nosec G304 -- key path is derived from the validated data path
	if contents, err := os.ReadFile(keyPath); err == nil {
		key, err := decodeKeyHex(strings.TrimSpace(string(contents)))
		if err != nil {
			return nil, fmt.Errorf("stored auth key is invalid: %w", err)
		}
		return key, nil
	}

	key := make([]byte, keyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save auth key: %w", err)
	}

	return key, nil
}
