package catalogmedia

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// CatalogID is an opaque 24-hex-character catalog identifier, the shape
// the legacy document store used. Malformed ids are rejected before any
// repository query.
type CatalogID string

const catalogIDLength = 24

// NewCatalogID generates a fresh random catalog identifier.
func NewCatalogID() CatalogID {
	var buf [catalogIDLength / 2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("catalogmedia: reading random bytes: %v", err))
	}
	return CatalogID(hex.EncodeToString(buf[:]))
}

// ParseCatalogID validates a raw identifier string.
func ParseCatalogID(raw string) (CatalogID, error) {
	if len(raw) != catalogIDLength {
		return "", fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}
	return CatalogID(raw), nil
}

func (id CatalogID) String() string { return string(id) }
