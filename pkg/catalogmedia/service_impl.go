package catalogmedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mercaba/catalog-media/pkg/catalogmedia/assetkey"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStores map[string]BlobStore

	primaryName  string
	fallbackName string

	probePolicy   ProbePolicy
	remoteDomains []string
	displayName   bool
	keys          assetkey.Generator
	logger        *slog.Logger

	cache      *ExistenceCache
	prober     *Prober
	locator    *Locator
	uploader   *Uploader
	authorizer *Authorizer
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the catalog repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore adds a named blob storage backend
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[string]BlobStore)
		}
		s.blobStores[name] = store
	}
}

// WithPrimaryBackend names the backend uploads go to first and
// existence probes run against
func WithPrimaryBackend(name string) Option {
	return func(s *service) {
		s.primaryName = name
	}
}

// WithFallbackBackend names the backend uploads degrade to when the
// primary rejects them (typically the local filesystem store)
func WithFallbackBackend(name string) Option {
	return func(s *service) {
		s.fallbackName = name
	}
}

// WithProbePolicy overrides the existence-check retry policy
func WithProbePolicy(policy ProbePolicy) Option {
	return func(s *service) {
		s.probePolicy = policy
	}
}

// WithRemoteDomains sets the remote-store domain substrings whose
// external URLs are rewritten to the internal proxy
func WithRemoteDomains(domains ...string) Option {
	return func(s *service) {
		s.remoteDomains = domains
	}
}

// WithDisplayNameOwnership widens ownership matching to the identity's
// display name (legacy-compatible behavior, off by default)
func WithDisplayNameOwnership() Option {
	return func(s *service) {
		s.displayName = true
	}
}

// WithKeyGenerator overrides the asset key generation strategy
func WithKeyGenerator(gen assetkey.Generator) Option {
	return func(s *service) {
		s.keys = gen
	}
}

// WithLogger sets the logger used by the service and its components
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores:  make(map[string]BlobStore),
		probePolicy: DefaultProbePolicy(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.primaryName == "" && len(s.blobStores) == 1 {
		for name := range s.blobStores {
			s.primaryName = name
		}
	}
	primary, ok := s.blobStores[s.primaryName]
	if !ok {
		return nil, fmt.Errorf("primary backend %q is not registered", s.primaryName)
	}
	var fallback BlobStore
	if s.fallbackName != "" {
		fallback, ok = s.blobStores[s.fallbackName]
		if !ok {
			return nil, fmt.Errorf("fallback backend %q is not registered", s.fallbackName)
		}
	}
	if s.keys == nil {
		s.keys = assetkey.NewRandomGenerator()
	}

	s.cache = NewExistenceCache()
	s.prober = NewProber(s.primaryName, primary, s.probePolicy)
	s.locator = NewLocator(s.prober, s.cache, s.remoteDomains)
	s.uploader = NewUploader(s.primaryName, primary, s.fallbackName, fallback, s.keys, s.cache)
	s.authorizer = NewAuthorizer(s.displayName)

	return s, nil
}

// loadAuthorized parses the raw id, loads the catalog and authorizes
// the identity against it. Every failure carries a distinct deny
// reason so callers can message "no such catalog" and "exists but
// forbidden" differently.
func (s *service) loadAuthorized(ctx context.Context, identity Identity, rawID string) (*Catalog, error) {
	id, err := ParseCatalogID(rawID)
	if err != nil {
		return nil, &AuthzError{Reason: DenyMalformedID, Err: err}
	}

	catalog, err := s.repository.GetCatalog(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCatalogNotFound) {
			return nil, &AuthzError{Reason: DenyNotFound, Err: err}
		}
		return nil, &AuthzError{Reason: DenyBackendUnavailable, Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
	}

	if err := s.authorizer.Authorize(identity, catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Catalog operations

func (s *service) CreateCatalog(ctx context.Context, identity Identity, req CreateCatalogRequest) (*Catalog, error) {
	now := time.Now().UTC()
	rows := CloneRows(req.Rows)
	if rows == nil {
		rows = []Row{}
	}
	catalog := &Catalog{
		ID:           NewCatalogID(),
		Name:         req.Name,
		Headers:      SanitizeHeaders(req.Headers),
		Data:         rows,
		LegacyRows:   CloneRows(rows),
		CreatorID:    identity.UserID,
		Owner:        identity.Username,
		CreatorName:  identity.DisplayName,
		CreatorEmail: identity.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repository.CreateCatalog(ctx, catalog); err != nil {
		return nil, &CatalogError{CatalogID: catalog.ID, Op: "create", Err: err}
	}
	return catalog, nil
}

func (s *service) GetCatalog(ctx context.Context, identity Identity, rawID string) (*CatalogView, error) {
	catalog, err := s.loadAuthorized(ctx, identity, rawID)
	if err != nil {
		return nil, err
	}

	rows := NormalizeOnRead(catalog)
	views := make([]RowView, len(rows))
	for i, row := range rows {
		views[i] = RowView{
			Row:      row,
			AssetURL: s.locator.Resolve(ctx, row),
		}
	}

	return &CatalogView{
		Catalog:      catalog,
		Rows:         views,
		ThumbnailURL: s.locator.ResolveRef(ctx, catalog.Thumbnail),
	}, nil
}

func (s *service) ListCatalogs(ctx context.Context, identity Identity) ([]*Catalog, error) {
	if identity.IsAdmin() {
		catalogs, err := s.repository.ListCatalogs(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return catalogs, nil
	}

	catalogs, err := s.repository.ListCatalogsByOwner(ctx, identity.Aliases(s.displayName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return catalogs, nil
}

func (s *service) DeleteCatalog(ctx context.Context, identity Identity, rawID string) error {
	catalog, err := s.loadAuthorized(ctx, identity, rawID)
	if err != nil {
		return err
	}

	if err := s.repository.DeleteCatalog(ctx, catalog.ID); err != nil {
		return &CatalogError{CatalogID: catalog.ID, Op: "delete", Err: err}
	}

	// Best-effort asset cleanup, deliberately not transactional with
	// the document delete.
	s.removeCatalogAssets(ctx, catalog)
	return nil
}

func (s *service) SetThumbnail(ctx context.Context, identity Identity, rawID string, ref string) error {
	catalog, err := s.loadAuthorized(ctx, identity, rawID)
	if err != nil {
		return err
	}

	if old := ParseAssetRef(catalog.Thumbnail); old.Kind == RefKey && old.Value != ref {
		s.cache.Invalidate(old.Value)
	}

	catalog.Thumbnail = ref
	catalog.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateCatalogMeta(ctx, catalog); err != nil {
		return &CatalogError{CatalogID: catalog.ID, Op: "set_thumbnail", Err: err}
	}
	return nil
}

// Row operations

func (s *service) AddRow(ctx context.Context, identity Identity, rawID string, row Row) error {
	catalog, err := s.loadAuthorized(ctx, identity, rawID)
	if err != nil {
		return err
	}

	rows := append(CloneRows(NormalizeOnRead(catalog)), row)
	if err := s.repository.UpdateRows(ctx, catalog.ID, rows); err != nil {
		return &CatalogError{CatalogID: catalog.ID, Op: "add_row", Err: err}
	}
	return nil
}

// UpdateRow replaces one row positionally in both stored row lists.
// Unlike AddRow and DeleteRow, which rewrite the full list and so
// repair any drift between the two fields, a positional write touches
// only the given index: a document whose fields already diverge keeps
// its divergence until the next full rewrite.
func (s *service) UpdateRow(ctx context.Context, identity Identity, rawID string, index int, row Row) error {
	catalog, err := s.loadAuthorized(ctx, identity, rawID)
	if err != nil {
		return err
	}

	rows := NormalizeOnRead(catalog)
	if index < 0 || index >= len(rows) {
		return &CatalogError{CatalogID: catalog.ID, Op: "update_row", Err: ErrRowIndexOutOfRange}
	}

	s.invalidateRowAssets(rows[index])
	if err := s.repository.UpdateRowAt(ctx, catalog.ID, index, row); err != nil {
		return &CatalogError{CatalogID: catalog.ID, Op: "update_row", Err: err}
	}
	return nil
}

func (s *service) DeleteRow(ctx context.Context, identity Identity, rawID string, index int) error {
	catalog, err := s.loadAuthorized(ctx, identity, rawID)
	if err != nil {
		return err
	}

	rows := CloneRows(NormalizeOnRead(catalog))
	if index < 0 || index >= len(rows) {
		return &CatalogError{CatalogID: catalog.ID, Op: "delete_row", Err: ErrRowIndexOutOfRange}
	}

	removed := rows[index]
	rows = append(rows[:index], rows[index+1:]...)
	if err := s.repository.UpdateRows(ctx, catalog.ID, rows); err != nil {
		return &CatalogError{CatalogID: catalog.ID, Op: "delete_row", Err: err}
	}

	s.invalidateRowAssets(removed)
	return nil
}

// Asset operations

func (s *service) StoreAsset(ctx context.Context, reader io.Reader, suggestedName string) (string, error) {
	return s.uploader.Store(ctx, reader, suggestedName)
}

func (s *service) ResolveAsset(ctx context.Context, row Row) string {
	return s.locator.Resolve(ctx, row)
}

func (s *service) ResolveAssetRef(ctx context.Context, ref string) string {
	return s.locator.ResolveRef(ctx, ref)
}

// OpenAsset streams an asset's bytes for the proxy route: the primary
// backend first, then the fallback, so proxied keys work regardless of
// which backend ended up holding the upload.
func (s *service) OpenAsset(ctx context.Context, key string) (io.ReadCloser, error) {
	primary := s.blobStores[s.primaryName]
	rc, err := primary.Download(ctx, key)
	if err == nil {
		return rc, nil
	}

	if s.fallbackName != "" {
		if rc, fbErr := s.blobStores[s.fallbackName].Download(ctx, key); fbErr == nil {
			return rc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, key)
}

// DeleteAsset removes an asset from every backend and drops its cache
// entry. Missing keys are not an error.
func (s *service) DeleteAsset(ctx context.Context, key string) error {
	var errs []error
	for name, store := range s.blobStores {
		if err := store.Delete(ctx, key); err != nil {
			errs = append(errs, &StorageError{Backend: name, Key: key, Op: "delete", Err: err})
		}
	}
	s.cache.Invalidate(key)
	return errors.Join(errs...)
}

func (s *service) InvalidateAsset(key string) {
	s.cache.Invalidate(key)
}

func (s *service) ClearAssetCache() {
	s.cache.Clear()
}

// invalidateRowAssets drops cache entries for every asset key a row
// references, so a replaced or deleted asset never renders from a stale
// cached probe.
func (s *service) invalidateRowAssets(row Row) {
	for _, key := range rowAssetKeys(row) {
		s.cache.Invalidate(key)
	}
}

// removeCatalogAssets deletes every asset referenced across both row
// fields. Errors are logged and swallowed: the catalog document is
// already gone and the orphaned blobs are harmless.
func (s *service) removeCatalogAssets(ctx context.Context, catalog *Catalog) {
	seen := make(map[string]struct{})
	for _, rows := range [][]Row{catalog.Data, catalog.LegacyRows} {
		for _, row := range rows {
			for _, key := range rowAssetKeys(row) {
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				if err := s.DeleteAsset(ctx, key); err != nil {
					s.logger.Warn("asset cleanup failed", "catalog_id", catalog.ID, "key", key, "error", err)
				}
			}
		}
	}

	if thumb := ParseAssetRef(catalog.Thumbnail); thumb.Kind == RefKey {
		if _, dup := seen[thumb.Value]; !dup {
			if err := s.DeleteAsset(ctx, thumb.Value); err != nil {
				s.logger.Warn("thumbnail cleanup failed", "catalog_id", catalog.ID, "key", thumb.Value, "error", err)
			}
		}
	}
}

// rowAssetKeys collects the opaque asset keys a row references through
// any of the image or document synonym fields. External URLs and
// already-resolved proxy paths are not deletable keys and are skipped,
// except that resolved paths are unwrapped back to their key.
func rowAssetKeys(row Row) []string {
	var keys []string
	appendRef := func(raw string) {
		switch ref := ParseAssetRef(raw); ref.Kind {
		case RefKey:
			keys = append(keys, ref.Value)
		case RefResolved:
			if k := resolvedPathKey(ref.Value); k != "" {
				keys = append(keys, k)
			}
		}
	}

	for _, field := range append(append([]string{}, ImageFieldSynonyms...), DocumentFieldSynonyms...) {
		for _, raw := range row.ListField(field) {
			appendRef(raw)
		}
	}
	return keys
}

// resolvedPathKey strips a known internal prefix from a resolved path,
// recovering the raw asset key.
func resolvedPathKey(p string) string {
	switch {
	case len(p) > len(ProxyPrefix) && p[:len(ProxyPrefix)] == ProxyPrefix:
		return p[len(ProxyPrefix):]
	case len(p) > len(StaticPrefix) && p[:len(StaticPrefix)] == StaticPrefix:
		return p[len(StaticPrefix):]
	default:
		return ""
	}
}
