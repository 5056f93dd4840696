package catalogmedia

import (
	"time"
)

// Row field names inherited from the legacy document format. The same
// image list may appear under any of the synonym keys; resolution order
// is significant (see Service.ResolveAsset).
const (
	// FieldExternalImage holds a single external image URL.
	FieldExternalImage = "Imagen"

	// FieldImages is the primary image-list key.
	FieldImages = "imagenes"

	// Legacy aliases for the image list, checked after FieldImages.
	FieldImagesAlias       = "images"
	FieldImagesLegacyAlias = "lista_imagenes"

	// FieldDocuments is the primary document-list key.
	FieldDocuments      = "documentos"
	FieldDocumentsAlias = "documents"
)

// ImageFieldSynonyms is the fixed priority order for locating a row's
// image list.
var ImageFieldSynonyms = []string{FieldImages, FieldImagesAlias, FieldImagesLegacyAlias}

// DocumentFieldSynonyms is the fixed priority order for locating a row's
// document list.
var DocumentFieldSynonyms = []string{FieldDocuments, FieldDocumentsAlias}

// ReservedRowKeys are row keys that carry media references rather than
// cell values. They never appear in a catalog's header list.
var ReservedRowKeys = []string{
	FieldExternalImage,
	FieldImages,
	FieldImagesAlias,
	FieldImagesLegacyAlias,
	FieldDocuments,
	FieldDocumentsAlias,
}

// Row is a single catalog row: a mapping from header name to cell value,
// plus the reserved media keys above. Values are schemaless because rows
// originate from spreadsheet imports and legacy documents.
type Row map[string]interface{}

// StringField returns the row value under key as a string, or "" when
// the key is absent or not a string.
func (r Row) StringField(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ListField returns the row value under key as a string list. Legacy
// documents store lists as []interface{}, newer writes as []string, and
// some repaired rows hold a single string; all three shapes are accepted.
func (r Row) ListField(key string) []string {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if vv == "" {
			return nil
		}
		return []string{vv}
	default:
		return nil
	}
}

// FirstSynonymList returns the first non-empty list found under the
// given synonym keys, in order.
func (r Row) FirstSynonymList(synonyms []string) []string {
	for _, key := range synonyms {
		if list := r.ListField(key); len(list) > 0 {
			return list
		}
	}
	return nil
}

// IsReservedKey reports whether key is one of the media-reference keys
// that must never appear in a header list.
func IsReservedKey(key string) bool {
	for _, k := range ReservedRowKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Catalog is a tabular catalog document.
//
// Data and LegacyRows are the two redundant row-list representations
// kept for backward compatibility. After every successful write both
// must hold identical content; on read, NormalizeOnRead decides which
// one is authoritative. All code paths must go through those two entry
// points rather than touching the fields directly.
type Catalog struct {
	ID      CatalogID `json:"id"`
	Name    string    `json:"name"`
	Headers []string  `json:"headers"`

	Data       []Row `json:"data"`
	LegacyRows []Row `json:"rows"`

	// Owner identity under several legacy field names. ResolveOwner
	// picks the first non-empty one in declaration order.
	CreatorID    string `json:"creator_id,omitempty"`
	Owner        string `json:"owner,omitempty"`
	CreatorName  string `json:"creator_name,omitempty"`
	CreatorEmail string `json:"creator_email,omitempty"`

	// Thumbnail is an optional custom thumbnail reference (external URL
	// or asset key).
	Thumbnail string `json:"thumbnail,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role is the access level of an acting subject.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// Identity is the acting subject for one request: the set of aliases
// that may represent the same user across legacy owner fields, plus the
// role flag. It is built once at the request boundary and read-only
// afterwards.
type Identity struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// Aliases returns the identity values that count for ownership
// matching. Display name participates only when includeDisplayName is
// set (see WithDisplayNameOwnership).
func (id Identity) Aliases(includeDisplayName bool) []string {
	aliases := make([]string, 0, 4)
	for _, a := range []string{id.UserID, id.Username, id.Email} {
		if a != "" {
			aliases = append(aliases, a)
		}
	}
	if includeDisplayName && id.DisplayName != "" {
		aliases = append(aliases, id.DisplayName)
	}
	return aliases
}

// RowView is one row of a rendered catalog with its resolved asset URL.
// An empty AssetURL means the caller renders a placeholder.
type RowView struct {
	Row      Row    `json:"row"`
	AssetURL string `json:"asset_url,omitempty"`
}

// CatalogView is a catalog prepared for rendering: rows already
// normalized across the dual fields and each row's asset resolved.
type CatalogView struct {
	Catalog      *Catalog  `json:"catalog"`
	Rows         []RowView `json:"rows"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}
