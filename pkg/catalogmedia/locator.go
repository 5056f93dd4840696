package catalogmedia

import (
	"context"
	"log/slog"
)

// Locator produces the final displayable URL for a row's asset
// reference, whichever legacy field it lives under and whichever
// backend holds the bytes. All render paths share this one
// implementation; the fallback chain is not duplicated anywhere else.
type Locator struct {
	prober        *Prober
	cache         *ExistenceCache
	remoteDomains []string
	logger        *slog.Logger
}

// NewLocator creates a locator over the given prober and cache.
func NewLocator(prober *Prober, cache *ExistenceCache, remoteDomains []string) *Locator {
	if len(remoteDomains) == 0 {
		remoteDomains = DefaultRemoteDomains
	}
	return &Locator{
		prober:        prober,
		cache:         cache,
		remoteDomains: remoteDomains,
		logger:        slog.Default(),
	}
}

// Resolve returns the displayable URL for row's image asset, or "" when
// the row references nothing (caller renders a placeholder). Absence is
// a normal return value, never an error: one unresolvable row must not
// abort rendering the rest of the catalog.
//
// Precedence, in strict order:
//  1. the external-image field, rewritten to the proxy when it points
//     at a known remote-store domain
//  2. the first non-empty image list among the synonym fields
//  3. per candidate key: pass through already-resolved paths, otherwise
//     probe (through the cache) and branch remote-proxy / local-static
func (l *Locator) Resolve(ctx context.Context, row Row) string {
	if ext := ParseAssetRef(row.StringField(FieldExternalImage)); ext.Kind == RefExternal {
		return l.resolveExternal(ext.Value)
	}

	for _, candidate := range row.FirstSynonymList(ImageFieldSynonyms) {
		if u := l.ResolveRef(ctx, candidate); u != "" {
			return u
		}
	}
	return ""
}

// ResolveRef resolves a single raw asset reference to a displayable
// URL, or "" for an empty reference.
func (l *Locator) ResolveRef(ctx context.Context, raw string) string {
	ref := ParseAssetRef(raw)
	switch ref.Kind {
	case RefEmpty:
		return ""
	case RefExternal:
		return l.resolveExternal(ref.Value)
	case RefResolved:
		return ref.Value
	}
	return l.resolveKey(ctx, ref.Value)
}

func (l *Locator) resolveExternal(rawURL string) string {
	if IsRemoteStoreURL(rawURL, l.remoteDomains) {
		if key := RemoteURLKey(rawURL); key != "" {
			return ProxyPrefix + key
		}
	}
	return rawURL
}

func (l *Locator) resolveKey(ctx context.Context, key string) string {
	exists, known := l.cache.Get(key)
	if !known {
		var err error
		exists, err = l.prober.Exists(ctx, key)
		if err != nil {
			// Render must go on; assume the local copy and leave the
			// cache untouched so the next request probes again.
			l.logger.Warn("asset probe failed, falling back to local path",
				"key", key, "error", err)
			return StaticPrefix + key
		}
		l.cache.Set(key, exists)
	}

	if exists {
		return ProxyPrefix + key
	}
	// Terminal fallback: the local static path, even when unconfirmed.
	return StaticPrefix + key
}
