// Package storage defines the abstract adapter the core pipeline consumes.
// The core never imports a concrete backend; it only ever holds a Storage
// value.
package storage

import (
	"context"

	"github.com/relsearch/search-service/internal/catalog"
)

// Row is one result row: a mapping from the column name as it appears in
// the SELECT list (after any ::TEXT suffix is stripped by the driver) to
// its textual representation. The core treats every value as an opaque
// string.
type Row map[string]string

// Storage is the capability interface every backend adapter implements.
// Database connections and pools live behind this interface, owned by the
// adapter, never by the core.
type Storage interface {
	// GetCatalog fetches a fresh schema snapshot, typically performing I/O.
	GetCatalog(ctx context.Context) (catalog.DbSchema, error)

	// TranslateType maps a backend-native type string to the closed
	// TypeKind set, failing with apperr.UnknownTypeError for anything it
	// doesn't model.
	TranslateType(native string) (catalog.TypeKind, error)

	// Execute runs a synthesized SQL string and returns the result rows.
	Execute(ctx context.Context, sql string) ([]Row, error)

	// BackendTag identifies the backend ("postgres", "mysql", ...) so the
	// pipeline can apply backend-specific projection decoration.
	BackendTag() string
}
