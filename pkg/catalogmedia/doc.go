// Package catalogmedia provides the media resolution and catalog
// consistency layer for the catalog service, with pluggable repository
// and blob storage backends.
//
// It exposes a single Service interface that orchestrates catalog access
// control, dual-field row normalization, asset URL resolution and the
// upload pipeline. Implementations of repositories (e.g., memory,
// Postgres) and blob stores (e.g., memory, filesystem, S3) are provided
// under subpackages.
//
// # Asset References
//
// A row may reference a displayable asset as a fully-qualified external
// URL, an opaque object-store key, or a bare local filename. References
// are classified structurally (scheme prefix, known remote-store domain
// substrings), never by a stored type tag; see ParseAssetRef. Resolution
// to a final URL is a read-time concern: uploads always return opaque
// keys.
package catalogmedia
