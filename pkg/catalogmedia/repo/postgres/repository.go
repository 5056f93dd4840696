// Package postgres implements the catalog repository on PostgreSQL.
// Catalogs are stored one row per document with the header list and
// both redundant row lists held as JSONB columns, so a dual-field row
// write is a single UPDATE statement.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

// Schema is the DDL for the catalog table. Deployments run it through
// their migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS catalog (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    headers       JSONB NOT NULL DEFAULT '[]',
    data          JSONB NOT NULL DEFAULT '[]',
    rows          JSONB NOT NULL DEFAULT '[]',
    creator_id    TEXT NOT NULL DEFAULT '',
    owner         TEXT NOT NULL DEFAULT '',
    creator_name  TEXT NOT NULL DEFAULT '',
    creator_email TEXT NOT NULL DEFAULT '',
    thumbnail     TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DBTX is an interface that allows us to use either a database
// connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements catalogmedia.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) catalogmedia.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) catalogmedia.Repository {
	return &Repository{db: pool}
}

const catalogColumns = `id, name, headers, data, rows, creator_id, owner, creator_name, creator_email, thumbnail, created_at, updated_at`

func (r *Repository) CreateCatalog(ctx context.Context, catalog *catalogmedia.Catalog) error {
	headers, data, legacy, err := marshalCatalogJSON(catalog)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO catalog (` + catalogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.Exec(ctx, query,
		catalog.ID.String(), catalog.Name, headers, data, legacy,
		catalog.CreatorID, catalog.Owner, catalog.CreatorName, catalog.CreatorEmail,
		catalog.Thumbnail, catalog.CreatedAt, catalog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting catalog: %w", err)
	}
	return nil
}

func (r *Repository) GetCatalog(ctx context.Context, id catalogmedia.CatalogID) (*catalogmedia.Catalog, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog WHERE id = $1`
	return scanCatalog(r.db.QueryRow(ctx, query, id.String()))
}

func (r *Repository) UpdateCatalogMeta(ctx context.Context, catalog *catalogmedia.Catalog) error {
	headers, err := json.Marshal(catalog.Headers)
	if err != nil {
		return fmt.Errorf("marshaling headers: %w", err)
	}

	query := `
		UPDATE catalog
		SET name = $2, headers = $3, creator_id = $4, owner = $5,
		    creator_name = $6, creator_email = $7, thumbnail = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		catalog.ID.String(), catalog.Name, headers,
		catalog.CreatorID, catalog.Owner, catalog.CreatorName, catalog.CreatorEmail,
		catalog.Thumbnail, catalog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating catalog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalogmedia.ErrCatalogNotFound
	}
	return nil
}

func (r *Repository) DeleteCatalog(ctx context.Context, id catalogmedia.CatalogID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("deleting catalog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalogmedia.ErrCatalogNotFound
	}
	return nil
}

func (r *Repository) ListCatalogs(ctx context.Context) ([]*catalogmedia.Catalog, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing catalogs: %w", err)
	}
	defer rows.Close()
	return scanCatalogs(rows)
}

func (r *Repository) ListCatalogsByOwner(ctx context.Context, aliases []string) ([]*catalogmedia.Catalog, error) {
	if len(aliases) == 0 {
		return nil, nil
	}

	// Owner resolution order mirrors catalogmedia.ResolveOwner.
	query := `
		SELECT ` + catalogColumns + `
		FROM catalog
		WHERE COALESCE(
			NULLIF(creator_id, ''), NULLIF(owner, ''),
			NULLIF(creator_name, ''), NULLIF(creator_email, '')
		) = ANY($1)
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, aliases)
	if err != nil {
		return nil, fmt.Errorf("listing catalogs by owner: %w", err)
	}
	defer rows.Close()
	return scanCatalogs(rows)
}

// UpdateRows writes the same row list into both JSONB columns with one
// UPDATE. The dual-field invariant holds or the statement fails whole;
// there is no window where only one column carries the new rows.
func (r *Repository) UpdateRows(ctx context.Context, id catalogmedia.CatalogID, rowList []catalogmedia.Row) error {
	payload, err := json.Marshal(rowList)
	if err != nil {
		return fmt.Errorf("marshaling rows: %w", err)
	}

	query := `
		UPDATE catalog
		SET data = $2::jsonb, rows = $2::jsonb, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id.String(), payload)
	if err != nil {
		return fmt.Errorf("updating rows: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalogmedia.ErrCatalogNotFound
	}
	return nil
}

// UpdateRowAt replaces the row at index in both JSONB columns with one
// UPDATE. jsonb_set leaves a column unchanged when the index is past
// its end, which matches the repair semantics for documents whose two
// fields have drifted in length.
func (r *Repository) UpdateRowAt(ctx context.Context, id catalogmedia.CatalogID, index int, row catalogmedia.Row) error {
	if index < 0 {
		return catalogmedia.ErrRowIndexOutOfRange
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshaling row: %w", err)
	}

	query := `
		UPDATE catalog
		SET data = jsonb_set(data, ARRAY[$2], $3::jsonb, false),
		    rows = jsonb_set(rows, ARRAY[$2], $3::jsonb, false),
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id.String(), strconv.Itoa(index), payload)
	if err != nil {
		return fmt.Errorf("updating row at %d: %w", index, err)
	}
	if tag.RowsAffected() == 0 {
		return catalogmedia.ErrCatalogNotFound
	}
	return nil
}

func marshalCatalogJSON(catalog *catalogmedia.Catalog) (headers, data, legacy []byte, err error) {
	if headers, err = json.Marshal(catalog.Headers); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling headers: %w", err)
	}
	if data, err = json.Marshal(catalog.Data); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling data rows: %w", err)
	}
	if legacy, err = json.Marshal(catalog.LegacyRows); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling legacy rows: %w", err)
	}
	return headers, data, legacy, nil
}

func scanCatalog(row pgx.Row) (*catalogmedia.Catalog, error) {
	var (
		c       catalogmedia.Catalog
		rawID   string
		headers []byte
		data    []byte
		legacy  []byte
	)

	err := row.Scan(&rawID, &c.Name, &headers, &data, &legacy,
		&c.CreatorID, &c.Owner, &c.CreatorName, &c.CreatorEmail,
		&c.Thumbnail, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogmedia.ErrCatalogNotFound
		}
		return nil, fmt.Errorf("scanning catalog: %w", err)
	}

	c.ID = catalogmedia.CatalogID(rawID)
	if err := json.Unmarshal(headers, &c.Headers); err != nil {
		return nil, fmt.Errorf("unmarshaling headers: %w", err)
	}
	if err := json.Unmarshal(data, &c.Data); err != nil {
		return nil, fmt.Errorf("unmarshaling data rows: %w", err)
	}
	if err := json.Unmarshal(legacy, &c.LegacyRows); err != nil {
		return nil, fmt.Errorf("unmarshaling legacy rows: %w", err)
	}
	return &c, nil
}

func scanCatalogs(rows pgx.Rows) ([]*catalogmedia.Catalog, error) {
	var out []*catalogmedia.Catalog
	for rows.Next() {
		c, err := scanCatalog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalogs: %w", err)
	}
	return out, nil
}
