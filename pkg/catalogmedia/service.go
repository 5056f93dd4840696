package catalogmedia

import (
	"context"
	"io"
)

// Service defines the main interface for the catalog media library.
type Service interface {
	// Catalog operations
	CreateCatalog(ctx context.Context, identity Identity, req CreateCatalogRequest) (*Catalog, error)
	GetCatalog(ctx context.Context, identity Identity, rawID string) (*CatalogView, error)
	ListCatalogs(ctx context.Context, identity Identity) ([]*Catalog, error)
	DeleteCatalog(ctx context.Context, identity Identity, rawID string) error
	SetThumbnail(ctx context.Context, identity Identity, rawID string, ref string) error

	// Row operations; every mutation rewrites both redundant row fields
	// in one repository update
	AddRow(ctx context.Context, identity Identity, rawID string, row Row) error
	UpdateRow(ctx context.Context, identity Identity, rawID string, index int, row Row) error
	DeleteRow(ctx context.Context, identity Identity, rawID string, index int) error

	// Asset operations
	StoreAsset(ctx context.Context, reader io.Reader, suggestedName string) (string, error)
	ResolveAsset(ctx context.Context, row Row) string
	ResolveAssetRef(ctx context.Context, ref string) string
	OpenAsset(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteAsset(ctx context.Context, key string) error

	// Cache maintenance
	InvalidateAsset(key string)
	ClearAssetCache()
}
