// Package postgres is the Postgres storage.Storage adapter: catalog
// introspection via a single batched pg_catalog query (adapted from the
// CTE batch query used for UI/tooling introspection elsewhere in this
// lineage), type translation per the documented mapping, and execution
// through a pgx connection pool.
package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pg_query "github.com/pganalyze/pg_query_go/v6"
	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/catalog"
	"github.com/relsearch/search-service/internal/storage"
)

// catalogQuery batches columns, primary keys, and foreign keys into one
// round trip via CTEs, scoped to an allow-listed set of schemas. Adapted
// from the richer multi-purpose introspection query this lineage's UI
// tooling uses, trimmed to exactly what the catalog model needs.
const catalogQuery = `
WITH schemas AS (
  SELECT n.oid AS nspoid, n.nspname
  FROM pg_catalog.pg_namespace n
  WHERE n.nspname = ANY($1)
),
base_tables AS (
  SELECT c.oid AS relid, c.relname, s.nspname
  FROM pg_catalog.pg_class c
  JOIN schemas s ON s.nspoid = c.relnamespace
  WHERE c.relkind IN ('r', 'p')
),
cols AS (
  SELECT
    b.nspname, b.relname, a.attnum, a.attname,
    pg_catalog.format_type(a.atttypid, a.atttypmod) AS typ
  FROM base_tables b
  JOIN pg_catalog.pg_attribute a ON a.attrelid = b.relid AND a.attnum > 0 AND NOT a.attisdropped
),
pks AS (
  SELECT b.nspname, b.relname, a.attname
  FROM base_tables b
  JOIN pg_catalog.pg_index i ON i.indrelid = b.relid AND i.indisprimary
  JOIN pg_catalog.pg_attribute a ON a.attrelid = b.relid AND a.attnum = ANY(i.indkey)
),
fks AS (
  SELECT
    sn.nspname AS src_schema, st.relname AS src_table, sa.attname AS src_col,
    dn.nspname AS dst_schema, dt.relname AS dst_table, da.attname AS dst_col
  FROM pg_catalog.pg_constraint con
  JOIN pg_catalog.pg_class st ON st.oid = con.conrelid
  JOIN pg_catalog.pg_namespace sn ON sn.oid = st.relnamespace
  JOIN pg_catalog.pg_class dt ON dt.oid = con.confrelid
  JOIN pg_catalog.pg_namespace dn ON dn.oid = dt.relnamespace
  JOIN unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord) ON true
  JOIN unnest(con.confkey) WITH ORDINALITY AS k2(attnum, ord) ON k2.ord = k.ord
  JOIN pg_catalog.pg_attribute sa ON sa.attrelid = st.oid AND sa.attnum = k.attnum
  JOIN pg_catalog.pg_attribute da ON da.attrelid = dt.oid AND da.attnum = k2.attnum
  WHERE con.contype = 'f' AND sn.nspname = ANY($1)
)
SELECT 'COL' AS kind, nspname, relname, attname, typ, NULL, NULL, NULL, NULL
  FROM cols
UNION ALL
SELECT 'PK', nspname, relname, attname, NULL, NULL, NULL, NULL, NULL
  FROM pks
UNION ALL
SELECT 'FK', src_schema, src_table, src_col, NULL, dst_schema, dst_table, dst_col, NULL
  FROM fks
ORDER BY 2, 3, 1, 4`

// Config configures a Storage instance.
type Config struct {
	ConnString string
	Schemas    []string
	// SyntaxGuard enables the pg_query_go ParseToJSON sanity check on
	// synthesized SQL before it is sent to the connection (see
	// SPEC_FULL.md §4.F.1). Never used to rewrite or sanitize the
	// statement.
	SyntaxGuard bool
	// CatalogTTL caches GetCatalog's result for this long before the next
	// call re-introspects. Zero disables caching (every call hits the
	// database). Checksummed the way richcatalog staleness-checks a
	// snapshot, minus its LISTEN/NOTIFY push path — this service is
	// strictly request/response, so a cheap TTL is enough.
	CatalogTTL time.Duration
}

// Storage is the Postgres storage.Storage implementation.
type Storage struct {
	pool   *pgxpool.Pool
	cfg    Config
	logger *zap.Logger

	cacheMu       sync.Mutex
	cachedSchema  catalog.DbSchema
	cacheChecksum string
	cacheExpires  time.Time
}

var _ storage.Storage = (*Storage)(nil)

// Open creates a connection pool and returns a Storage backed by it.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString)
	if err != nil {
		return nil, apperr.StorageError(fmt.Errorf("postgres: open pool: %w", err))
	}
	return &Storage{pool: pool, cfg: cfg, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) BackendTag() string { return "postgres" }

// TranslateType maps a `format_type()` native string to the closed
// TypeKind set per the documented type mapping table.
func (s *Storage) TranslateType(native string) (catalog.TypeKind, error) {
	n := strings.ToLower(native)
	switch {
	case n == "integer" || n == "bigint" || n == "int" || n == "smallint":
		return catalog.Integer, nil
	case n == "numeric" || n == "decimal" || n == "real" || n == "double precision" ||
		strings.HasPrefix(n, "numeric(") || strings.HasPrefix(n, "decimal("):
		return catalog.Float, nil
	case n == "character varying" || n == "varchar" || n == "text" || n == "character" || n == "char" ||
		strings.HasPrefix(n, "character varying(") || strings.HasPrefix(n, "character(") || strings.HasPrefix(n, "varchar("):
		return catalog.String, nil
	case n == "date" || strings.HasPrefix(n, "timestamp"):
		return catalog.Date, nil
	default:
		return catalog.TypeKind(0), apperr.UnknownTypeError(native)
	}
}

// GetCatalog returns the introspected catalog, reusing a cached copy until
// CatalogTTL elapses. When caching is on, a checksum over the introspection
// result is logged whenever a refresh yields a different checksum, so a
// change in schema shape is visible without diffing the full catalog by
// hand.
func (s *Storage) GetCatalog(ctx context.Context) (catalog.DbSchema, error) {
	if s.cfg.CatalogTTL > 0 {
		s.cacheMu.Lock()
		if time.Now().Before(s.cacheExpires) {
			cached := s.cachedSchema
			s.cacheMu.Unlock()
			return cached, nil
		}
		s.cacheMu.Unlock()
	}

	schema, err := s.introspect(ctx)
	if err != nil {
		return catalog.DbSchema{}, err
	}

	if s.cfg.CatalogTTL > 0 {
		sum := checksumSchema(schema)
		s.cacheMu.Lock()
		if sum != s.cacheChecksum {
			s.logger.Info("catalog refreshed", zap.String("checksum", sum))
		}
		s.cachedSchema = schema
		s.cacheChecksum = sum
		s.cacheExpires = time.Now().Add(s.cfg.CatalogTTL)
		s.cacheMu.Unlock()
	}
	return schema, nil
}

// checksumSchema hashes a deterministic JSON encoding of the schema, the
// same staleness-detection idea richcatalog used for its snapshot cache.
func checksumSchema(schema catalog.DbSchema) string {
	b, _ := json.Marshal(schema)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (s *Storage) introspect(ctx context.Context) (catalog.DbSchema, error) {
	rows, err := s.pool.Query(ctx, catalogQuery, s.cfg.Schemas)
	if err != nil {
		return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("postgres: catalog query: %w", err))
	}
	defer rows.Close()

	tables := map[string]*catalog.Table{}
	var order []string
	pks := map[string][]string{}
	var foreignKeys []catalog.ForeignKey

	for rows.Next() {
		var kind, schema, table string
		var attname, typ, dstSchema, dstTable, dstCol *string
		if err := rows.Scan(&kind, &schema, &table, &attname, &typ, &dstSchema, &dstTable, &dstCol, new(any)); err != nil {
			return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("postgres: scan: %w", err))
		}
		qn := schema + "." + table
		t, ok := tables[qn]
		if !ok {
			t = &catalog.Table{Schema: schema, Name: table}
			tables[qn] = t
			order = append(order, qn)
		}

		switch kind {
		case "COL":
			t.Attributes = append(t.Attributes, catalog.AttributeDef{Name: *attname, NativeType: *typ})
		case "PK":
			pks[qn] = append(pks[qn], *attname)
		case "FK":
			foreignKeys = append(foreignKeys, catalog.ForeignKey{
				Origin:  catalog.ForeignKeyEndpoint{Schema: schema, Table: table, Attribute: *attname},
				Foreign: catalog.ForeignKeyEndpoint{Schema: *dstSchema, Table: *dstTable, Attribute: *dstCol},
			})
		}
	}
	if err := rows.Err(); err != nil {
		return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("postgres: row iteration: %w", err))
	}

	result := catalog.DbSchema{ForeignKeys: foreignKeys}
	for _, qn := range order {
		t := tables[qn]
		t.PrimaryKeys = pks[qn]
		result.Tables = append(result.Tables, *t)
	}
	return result, nil
}

// Execute runs sql, optionally guarded by a pg_query_go syntax check, and
// returns the result rows with every column value rendered as text.
func (s *Storage) Execute(ctx context.Context, sql string) ([]storage.Row, error) {
	if s.cfg.SyntaxGuard {
		if _, err := pg_query.ParseToJSON(sql); err != nil {
			return nil, apperr.QueryBuildError("postgres: synthesized SQL failed syntax guard: %v", err)
		}
	}

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, apperr.StorageError(fmt.Errorf("postgres: execute: %w", err))
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	colNames := make([]string, len(fields))
	for i, f := range fields {
		colNames[i] = strings.TrimSuffix(string(f.Name), "::text")
	}

	var out []storage.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, apperr.StorageError(fmt.Errorf("postgres: scan row: %w", err))
		}
		row := make(storage.Row, len(values))
		for i, v := range values {
			row[colNames[i]] = fmt.Sprintf("%v", v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageError(fmt.Errorf("postgres: row iteration: %w", err))
	}
	return out, nil
}
