package catalogmedia

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for storage backends.
type BlobStore interface {
	// Exists performs a lightweight existence check for an object key.
	// A missing key is (false, nil), not an error. A non-nil error means
	// the check itself could not be performed.
	Exists(ctx context.Context, objectKey string) (bool, error)

	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content. Deleting a non-existent key is not an
	// error; every implementation must be idempotent.
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for catalog document persistence.
type Repository interface {
	CreateCatalog(ctx context.Context, catalog *Catalog) error
	GetCatalog(ctx context.Context, id CatalogID) (*Catalog, error)
	UpdateCatalogMeta(ctx context.Context, catalog *Catalog) error
	DeleteCatalog(ctx context.Context, id CatalogID) error

	// ListCatalogs returns every catalog (admin listing).
	ListCatalogs(ctx context.Context) ([]*Catalog, error)

	// ListCatalogsByOwner returns catalogs whose resolved owner matches
	// any of the given identity aliases.
	ListCatalogsByOwner(ctx context.Context, aliases []string) ([]*Catalog, error)

	// UpdateRows persists rows under both redundant row fields in a
	// single document update. Implementations must not issue two
	// separate writes for the two fields.
	UpdateRows(ctx context.Context, id CatalogID, rows []Row) error

	// UpdateRowAt replaces the row at index in both row fields in a
	// single document update. Last writer wins at the row-index level.
	UpdateRowAt(ctx context.Context, id CatalogID, index int, row Row) error
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}
