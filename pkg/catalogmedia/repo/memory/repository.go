package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

// Repository implements catalogmedia.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	catalogs map[catalogmedia.CatalogID]*catalogmedia.Catalog
}

// New creates a new in-memory repository
func New() catalogmedia.Repository {
	return &Repository{
		catalogs: make(map[catalogmedia.CatalogID]*catalogmedia.Catalog),
	}
}

// clone copies a catalog so callers cannot mutate stored state in place.
func clone(c *catalogmedia.Catalog) *catalogmedia.Catalog {
	out := *c
	out.Headers = append([]string(nil), c.Headers...)
	out.Data = catalogmedia.CloneRows(c.Data)
	out.LegacyRows = catalogmedia.CloneRows(c.LegacyRows)
	return &out
}

func (r *Repository) CreateCatalog(ctx context.Context, catalog *catalogmedia.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalogs[catalog.ID] = clone(catalog)
	return nil
}

func (r *Repository) GetCatalog(ctx context.Context, id catalogmedia.CatalogID) (*catalogmedia.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog, exists := r.catalogs[id]
	if !exists {
		return nil, catalogmedia.ErrCatalogNotFound
	}
	return clone(catalog), nil
}

// UpdateCatalogMeta updates name, headers, owner fields and thumbnail.
// Row fields are untouched; row writes go through UpdateRows.
func (r *Repository) UpdateCatalogMeta(ctx context.Context, catalog *catalogmedia.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.catalogs[catalog.ID]
	if !exists {
		return catalogmedia.ErrCatalogNotFound
	}

	stored.Name = catalog.Name
	stored.Headers = append([]string(nil), catalog.Headers...)
	stored.CreatorID = catalog.CreatorID
	stored.Owner = catalog.Owner
	stored.CreatorName = catalog.CreatorName
	stored.CreatorEmail = catalog.CreatorEmail
	stored.Thumbnail = catalog.Thumbnail
	stored.UpdatedAt = catalog.UpdatedAt
	return nil
}

func (r *Repository) DeleteCatalog(ctx context.Context, id catalogmedia.CatalogID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.catalogs[id]; !exists {
		return catalogmedia.ErrCatalogNotFound
	}
	delete(r.catalogs, id)
	return nil
}

func (r *Repository) ListCatalogs(ctx context.Context) ([]*catalogmedia.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*catalogmedia.Catalog, 0, len(r.catalogs))
	for _, c := range r.catalogs {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repository) ListCatalogsByOwner(ctx context.Context, aliases []string) ([]*catalogmedia.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	aliasSet := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		aliasSet[a] = struct{}{}
	}

	var out []*catalogmedia.Catalog
	for _, c := range r.catalogs {
		if _, ok := aliasSet[catalogmedia.ResolveOwner(c)]; ok {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateRows replaces both row fields with the same content under one
// lock, the in-memory equivalent of a single document update.
func (r *Repository) UpdateRows(ctx context.Context, id catalogmedia.CatalogID, rows []catalogmedia.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.catalogs[id]
	if !exists {
		return catalogmedia.ErrCatalogNotFound
	}

	stored.Data = catalogmedia.CloneRows(rows)
	stored.LegacyRows = catalogmedia.CloneRows(rows)
	return nil
}

// UpdateRowAt replaces the row at index in each row field where the
// index is in range. Last writer wins at the row-index level.
func (r *Repository) UpdateRowAt(ctx context.Context, id catalogmedia.CatalogID, index int, row catalogmedia.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.catalogs[id]
	if !exists {
		return catalogmedia.ErrCatalogNotFound
	}
	if index < 0 || (index >= len(stored.Data) && index >= len(stored.LegacyRows)) {
		return catalogmedia.ErrRowIndexOutOfRange
	}

	clone := catalogmedia.CloneRows([]catalogmedia.Row{row})[0]
	if index < len(stored.Data) {
		stored.Data[index] = clone
	}
	if index < len(stored.LegacyRows) {
		stored.LegacyRows[index] = catalogmedia.CloneRows([]catalogmedia.Row{row})[0]
	}
	return nil
}
