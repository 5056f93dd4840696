package catalogmedia

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrCatalogNotFound indicates a catalog was not found
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrAssetNotFound indicates an asset was not found in any backend
	ErrAssetNotFound = errors.New("asset not found")

	// ErrMalformedID indicates a catalog identifier that is not a valid
	// 24-hex-character id
	ErrMalformedID = errors.New("malformed catalog id")

	// ErrUnauthorized indicates the acting identity does not own the catalog
	ErrUnauthorized = errors.New("not authorized for catalog")

	// ErrBackendUnavailable indicates the object store or document store
	// could not be reached
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBackendAuth indicates the object store rejected our credentials
	// or configuration. Never retried.
	ErrBackendAuth = errors.New("backend authentication or configuration error")

	// ErrUploadFailed indicates both the primary and the fallback backend
	// rejected an upload
	ErrUploadFailed = errors.New("upload failed")

	// ErrRowIndexOutOfRange indicates a positional row operation past the
	// end of the row list
	ErrRowIndexOutOfRange = errors.New("row index out of range")
)

// CatalogError represents an error related to catalog operations
type CatalogError struct {
	CatalogID CatalogID
	Op        string
	Err       error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog operation %s failed for catalog %s: %v", e.Op, e.CatalogID, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DenyReason explains why Authorize refused access. Callers map each
// reason to a distinct user message; "no such catalog" and "exists but
// forbidden" must stay distinguishable.
type DenyReason string

const (
	DenyNotFound           DenyReason = "not_found"
	DenyMalformedID        DenyReason = "malformed_id"
	DenyBackendUnavailable DenyReason = "backend_unavailable"
	DenyNotOwner           DenyReason = "not_owner"
)

// AuthzError carries the deny reason alongside the underlying error.
type AuthzError struct {
	Reason DenyReason
	Err    error
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied (%s): %v", e.Reason, e.Err)
}

func (e *AuthzError) Unwrap() error {
	return e.Err
}

// DenyReasonOf extracts the deny reason from err, or "" when err is not
// an authorization failure.
func DenyReasonOf(err error) DenyReason {
	var ae *AuthzError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ""
}
