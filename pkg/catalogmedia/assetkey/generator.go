// Package assetkey generates collision-resistant object keys for
// uploaded catalog assets. Keys are flat (no directory separators)
// because the same key must address the object in the remote store and
// as a filename in the local uploads directory.
package assetkey

import (
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for asset key generation strategies.
type Generator interface {
	// GenerateKey creates an object key from the suggested (original)
	// file name.
	GenerateKey(suggestedName string) string
}

// RandomGenerator builds keys as <uuid-hex>_<sanitized-name>. The random
// component makes collisions with earlier uploads of the same file name
// impossible; the sanitized name keeps keys recognizable in bucket
// listings and on disk.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) GenerateKey(suggestedName string) string {
	random := strings.ReplaceAll(uuid.New().String(), "-", "")
	name := SanitizeName(suggestedName)
	if name == "" {
		return random
	}
	return random + "_" + name
}

// CustomFuncGenerator allows callers to provide their own key
// generation function.
type CustomFuncGenerator struct {
	GenerateFunc func(suggestedName string) string
}

func NewCustomFuncGenerator(fn func(suggestedName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) GenerateKey(suggestedName string) string {
	return g.GenerateFunc(suggestedName)
}

// SanitizeName converts an original file name into a safe flat key
// component: ASCII only, no path separators, no spaces. Latin
// characters lose their diacritics instead of being dropped, since most
// uploads carry Spanish file names.
func SanitizeName(name string) string {
	if name == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(name))

	for _, r := range name {
		switch {
		case r < 128 && isSafeASCII(r):
			result.WriteRune(r)
		case r >= 'À' && r <= 'Å':
			result.WriteRune('A')
		case r >= 'à' && r <= 'å':
			result.WriteRune('a')
		case r >= 'È' && r <= 'Ë':
			result.WriteRune('E')
		case r >= 'è' && r <= 'ë':
			result.WriteRune('e')
		case r >= 'Ì' && r <= 'Ï':
			result.WriteRune('I')
		case r >= 'ì' && r <= 'ï':
			result.WriteRune('i')
		case r >= 'Ò' && r <= 'Ö':
			result.WriteRune('O')
		case r >= 'ò' && r <= 'ö':
			result.WriteRune('o')
		case r >= 'Ù' && r <= 'Ü':
			result.WriteRune('U')
		case r >= 'ù' && r <= 'ü':
			result.WriteRune('u')
		case r == 'Ç':
			result.WriteRune('C')
		case r == 'ç':
			result.WriteRune('c')
		case r == 'Ñ':
			result.WriteRune('N')
		case r == 'ñ':
			result.WriteRune('n')
		default:
			result.WriteRune('-')
		}
	}

	return result.String()
}

func isSafeASCII(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_':
		return true
	default:
		return false
	}
}
