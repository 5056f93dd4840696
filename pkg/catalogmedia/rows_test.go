package catalogmedia_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

func TestNormalizeOnRead(t *testing.T) {
	rowsA := []catalogmedia.Row{{"name": "a"}}
	rowsAB := []catalogmedia.Row{{"name": "a"}, {"name": "b"}}
	rowsXY := []catalogmedia.Row{{"name": "x"}, {"name": "y"}}

	tests := []struct {
		name    string
		catalog catalogmedia.Catalog
		want    []catalogmedia.Row
	}{
		{
			name:    "both empty",
			catalog: catalogmedia.Catalog{},
			want:    nil,
		},
		{
			name:    "only data populated",
			catalog: catalogmedia.Catalog{Data: rowsA},
			want:    rowsA,
		},
		{
			name:    "only legacy populated",
			catalog: catalogmedia.Catalog{LegacyRows: rowsA},
			want:    rowsA,
		},
		{
			name:    "legacy longer wins",
			catalog: catalogmedia.Catalog{Data: rowsA, LegacyRows: rowsAB},
			want:    rowsAB,
		},
		{
			name:    "data longer wins",
			catalog: catalogmedia.Catalog{Data: rowsAB, LegacyRows: rowsA},
			want:    rowsAB,
		},
		{
			name:    "equal length prefers data",
			catalog: catalogmedia.Catalog{Data: rowsAB, LegacyRows: rowsXY},
			want:    rowsAB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalogmedia.NormalizeOnRead(&tt.catalog)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloneRowsIsolation(t *testing.T) {
	original := []catalogmedia.Row{{"name": "widget", "price": "10"}}
	clone := catalogmedia.CloneRows(original)

	clone[0]["name"] = "changed"
	assert.Equal(t, "widget", original[0]["name"])

	assert.Nil(t, catalogmedia.CloneRows(nil))
}

func TestSanitizeHeaders(t *testing.T) {
	headers := []string{"name", "Imagen", "price", "", "imagenes", "documentos", "sku"}
	assert.Equal(t, []string{"name", "price", "sku"}, catalogmedia.SanitizeHeaders(headers))
}

func TestIsReservedKey(t *testing.T) {
	for _, key := range []string{"Imagen", "imagenes", "images", "lista_imagenes", "documentos", "documents"} {
		assert.True(t, catalogmedia.IsReservedKey(key), key)
	}
	assert.False(t, catalogmedia.IsReservedKey("name"))
	assert.False(t, catalogmedia.IsReservedKey("imagen"))
}

func TestRowListField(t *testing.T) {
	row := catalogmedia.Row{
		"strings":    []string{"a.jpg", "b.jpg"},
		"interfaces": []interface{}{"c.jpg", 42, "", "d.jpg"},
		"single":     "e.jpg",
		"empty":      "",
		"number":     7,
	}

	assert.Equal(t, []string{"a.jpg", "b.jpg"}, row.ListField("strings"))
	assert.Equal(t, []string{"c.jpg", "d.jpg"}, row.ListField("interfaces"))
	assert.Equal(t, []string{"e.jpg"}, row.ListField("single"))
	assert.Nil(t, row.ListField("empty"))
	assert.Nil(t, row.ListField("number"))
	assert.Nil(t, row.ListField("missing"))
}

func TestRowFirstSynonymList(t *testing.T) {
	row := catalogmedia.Row{
		"images":         []string{"alias.jpg"},
		"lista_imagenes": []string{"legacy.jpg"},
	}
	got := row.FirstSynonymList(catalogmedia.ImageFieldSynonyms)
	assert.Equal(t, []string{"alias.jpg"}, got)

	row["imagenes"] = []string{"primary.jpg"}
	got = row.FirstSynonymList(catalogmedia.ImageFieldSynonyms)
	assert.Equal(t, []string{"primary.jpg"}, got)

	assert.Nil(t, catalogmedia.Row{}.FirstSynonymList(catalogmedia.ImageFieldSynonyms))
}
