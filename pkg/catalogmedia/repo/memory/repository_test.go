package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
	"github.com/mercaba/catalog-media/pkg/catalogmedia/repo/memory"
)

func seedCatalog(t *testing.T, repo catalogmedia.Repository, name, owner string, rows []catalogmedia.Row) *catalogmedia.Catalog {
	t.Helper()
	catalog := &catalogmedia.Catalog{
		ID:         catalogmedia.NewCatalogID(),
		Name:       name,
		Owner:      owner,
		Data:       rows,
		LegacyRows: catalogmedia.CloneRows(rows),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.CreateCatalog(context.Background(), catalog))
	return catalog
}

func TestCreateAndGetCatalog(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := seedCatalog(t, repo, "test", "alice", []catalogmedia.Row{{"name": "a"}})

	got, err := repo.GetCatalog(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "test", got.Name)
	assert.Equal(t, created.Data, got.Data)

	_, err = repo.GetCatalog(ctx, catalogmedia.NewCatalogID())
	assert.ErrorIs(t, err, catalogmedia.ErrCatalogNotFound)
}

func TestGetCatalogReturnsClones(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := seedCatalog(t, repo, "isolated", "alice", []catalogmedia.Row{{"name": "a"}})

	got, err := repo.GetCatalog(ctx, created.ID)
	require.NoError(t, err)
	got.Data[0]["name"] = "mutated"
	got.Name = "mutated"

	again, err := repo.GetCatalog(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "isolated", again.Name)
	assert.Equal(t, "a", again.Data[0].StringField("name"))
}

func TestUpdateCatalogMetaLeavesRowsAlone(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := seedCatalog(t, repo, "before", "alice", []catalogmedia.Row{{"name": "a"}})

	created.Name = "after"
	created.Thumbnail = "thumb.jpg"
	created.Data = nil
	created.LegacyRows = nil
	require.NoError(t, repo.UpdateCatalogMeta(ctx, created))

	got, err := repo.GetCatalog(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Name)
	assert.Equal(t, "thumb.jpg", got.Thumbnail)
	assert.Len(t, got.Data, 1)
	assert.Len(t, got.LegacyRows, 1)
}

func TestDeleteCatalog(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := seedCatalog(t, repo, "gone", "alice", nil)
	require.NoError(t, repo.DeleteCatalog(ctx, created.ID))

	_, err := repo.GetCatalog(ctx, created.ID)
	assert.ErrorIs(t, err, catalogmedia.ErrCatalogNotFound)

	assert.ErrorIs(t, repo.DeleteCatalog(ctx, created.ID), catalogmedia.ErrCatalogNotFound)
}

func TestListCatalogsByOwner(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedCatalog(t, repo, "a1", "alice", nil)
	seedCatalog(t, repo, "a2", "alice", nil)
	seedCatalog(t, repo, "b1", "bob", nil)

	// Owner may match under any legacy field.
	byEmail := &catalogmedia.Catalog{
		ID:           catalogmedia.NewCatalogID(),
		Name:         "a3",
		CreatorEmail: "alice@example.com",
	}
	require.NoError(t, repo.CreateCatalog(ctx, byEmail))

	got, err := repo.ListCatalogsByOwner(ctx, []string{"alice", "alice@example.com"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	all, err := repo.ListCatalogs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := repo.ListCatalogsByOwner(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateRowsSynchronizesBothFields(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	// Start diverged on purpose.
	catalog := &catalogmedia.Catalog{
		ID:         catalogmedia.NewCatalogID(),
		Name:       "diverged",
		Data:       []catalogmedia.Row{{"name": "old"}},
		LegacyRows: []catalogmedia.Row{{"name": "older"}, {"name": "oldest"}},
	}
	require.NoError(t, repo.CreateCatalog(ctx, catalog))

	rows := []catalogmedia.Row{{"name": "new-1"}, {"name": "new-2"}}
	require.NoError(t, repo.UpdateRows(ctx, catalog.ID, rows))

	got, err := repo.GetCatalog(ctx, catalog.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Data, got.LegacyRows)
	assert.Len(t, got.Data, 2)

	assert.ErrorIs(t, repo.UpdateRows(ctx, catalogmedia.NewCatalogID(), rows), catalogmedia.ErrCatalogNotFound)
}

func TestUpdateRowAt(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := seedCatalog(t, repo, "rows", "alice", []catalogmedia.Row{{"name": "a"}, {"name": "b"}})

	require.NoError(t, repo.UpdateRowAt(ctx, created.ID, 1, catalogmedia.Row{"name": "b2"}))

	got, err := repo.GetCatalog(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "b2", got.Data[1].StringField("name"))
	assert.Equal(t, "b2", got.LegacyRows[1].StringField("name"))

	assert.ErrorIs(t, repo.UpdateRowAt(ctx, created.ID, 5, catalogmedia.Row{}), catalogmedia.ErrRowIndexOutOfRange)
	assert.ErrorIs(t, repo.UpdateRowAt(ctx, created.ID, -1, catalogmedia.Row{}), catalogmedia.ErrRowIndexOutOfRange)
}

func TestUpdateRowAtUnevenFields(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	catalog := &catalogmedia.Catalog{
		ID:         catalogmedia.NewCatalogID(),
		Name:       "uneven",
		Data:       []catalogmedia.Row{{"name": "a"}},
		LegacyRows: []catalogmedia.Row{{"name": "a"}, {"name": "b"}},
	}
	require.NoError(t, repo.CreateCatalog(ctx, catalog))

	// Index 1 exists only in the legacy field; the update applies where
	// it can.
	require.NoError(t, repo.UpdateRowAt(ctx, catalog.ID, 1, catalogmedia.Row{"name": "b2"}))

	got, err := repo.GetCatalog(ctx, catalog.ID)
	require.NoError(t, err)
	assert.Len(t, got.Data, 1)
	assert.Equal(t, "b2", got.LegacyRows[1].StringField("name"))
}
