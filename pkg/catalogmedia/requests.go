package catalogmedia

// CreateCatalogRequest contains parameters for creating a catalog. Rows
// may be supplied up front (spreadsheet import path) or left empty.
type CreateCatalogRequest struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows,omitempty"`
}
