package catalogmedia

// NormalizeOnRead returns the authoritative row list for a catalog,
// reconciling the two redundant row fields for the current render. It
// never persists the normalization.
//
// Whichever field is non-empty is authoritative when the two disagree.
// When both are non-empty but different in length, the longer one wins:
// richer data (rows carrying image references picked up by a later
// import) must never be discarded in favor of a staler copy. On equal
// length the primary field wins. This asymmetry is deliberate and
// load-bearing; callers must not "simplify" it.
func NormalizeOnRead(c *Catalog) []Row {
	switch {
	case len(c.Data) == 0:
		return c.LegacyRows
	case len(c.LegacyRows) == 0:
		return c.Data
	case len(c.LegacyRows) > len(c.Data):
		return c.LegacyRows
	default:
		return c.Data
	}
}

// CloneRows deep-copies a row list one map level down. Repository
// implementations hand out clones so callers cannot mutate stored
// documents in place.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		clone := make(Row, len(row))
		for k, v := range row {
			clone[k] = v
		}
		out[i] = clone
	}
	return out
}

// SanitizeHeaders drops reserved media keys from a header list,
// preserving order. Reserved keys live on rows only; a header list that
// mentions them breaks positional rendering.
func SanitizeHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if h == "" || IsReservedKey(h) {
			continue
		}
		out = append(out, h)
	}
	return out
}
