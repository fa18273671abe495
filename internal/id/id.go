// Package id generates prefixed NanoID identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes used across the store. Keeping them here avoids two
// entities ever sharing a prefix.
const (
	PrefixBook    = "book"
	PrefixEvent   = "revt"
	PrefixUser    = "user"
	PrefixSession = "sess"
)

// Generate creates a prefixed unique ID, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
// NanoIDs are URL-safe and shorter than UUIDs at comparable entropy. Fails
// only when the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + suffix, nil
}

// MustGenerate panics when ID generation fails. For initialization paths
// where there is no caller to hand the error to.
func MustGenerate(prefix string) string {
	generated, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return generated
}
