package catalogmedia

import (
	"net/url"
	"strings"
)

// URL prefixes for resolved asset paths.
const (
	// ProxyPrefix is the internal route that streams object-store bytes
	// through the application.
	ProxyPrefix = "/proxy/"

	// StaticPrefix is the route serving the local uploads directory.
	StaticPrefix = "/uploads/"
)

// DefaultRemoteDomains are the remote-store domain substrings whose
// external URLs get rewritten to the internal proxy (direct links to
// these hosts fail cross-origin checks in the browser).
var DefaultRemoteDomains = []string{"amazonaws.com", "digitaloceanspaces.com"}

// AssetRefKind classifies an asset reference string.
type AssetRefKind int

const (
	// RefEmpty is the zero reference.
	RefEmpty AssetRefKind = iota

	// RefExternal is a fully-qualified http(s) URL.
	RefExternal

	// RefResolved is an already-resolved internal path (proxy or static
	// prefix); passed through unchanged.
	RefResolved

	// RefKey is an opaque object-store key or bare local filename.
	RefKey
)

// AssetRef is a classified asset reference. Classification happens once
// at the boundary by structural inspection; nothing downstream re-sniffs
// the raw string.
type AssetRef struct {
	Kind  AssetRefKind
	Value string
}

// ParseAssetRef classifies a raw reference string.
func ParseAssetRef(raw string) AssetRef {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return AssetRef{Kind: RefEmpty}
	case strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://"):
		return AssetRef{Kind: RefExternal, Value: raw}
	case strings.HasPrefix(raw, ProxyPrefix) || strings.HasPrefix(raw, StaticPrefix):
		return AssetRef{Kind: RefResolved, Value: raw}
	default:
		return AssetRef{Kind: RefKey, Value: raw}
	}
}

// IsRemoteStoreURL reports whether an external URL points at one of the
// known remote-store domains.
func IsRemoteStoreURL(rawURL string, remoteDomains []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, domain := range remoteDomains {
		if strings.Contains(host, strings.ToLower(domain)) {
			return true
		}
	}
	return false
}

// RemoteURLKey extracts the object key from a remote-store URL: the
// final path segment, query stripped. Legacy documents stored full
// bucket URLs whose keys are flat filenames, so the basename is the key.
func RemoteURLKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := strings.TrimSuffix(u.Path, "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		p = p[idx+1:]
	}
	return p
}
