// Package mysql is the MySQL storage.Storage adapter: catalog
// introspection via information_schema, adopted from the only MySQL-driver
// example in this lineage's retrieval pack, and type translation per the
// documented mapping. Unlike the Postgres adapter it never decorates the
// projection with a `::TEXT` suffix.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/catalog"
	"github.com/relsearch/search-service/internal/storage"
)

const columnsQuery = `
SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, DATA_TYPE
FROM information_schema.columns
WHERE TABLE_SCHEMA IN (?)
ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION`

const primaryKeysQuery = `
SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME
FROM information_schema.key_column_usage
WHERE CONSTRAINT_NAME = 'PRIMARY' AND TABLE_SCHEMA IN (?)
ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION`

const foreignKeysQuery = `
SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, REFERENCED_TABLE_SCHEMA, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
FROM information_schema.key_column_usage
WHERE REFERENCED_TABLE_NAME IS NOT NULL AND TABLE_SCHEMA IN (?)
ORDER BY TABLE_SCHEMA, TABLE_NAME`

// Config configures a Storage instance.
type Config struct {
	DSN     string
	Schemas []string
}

// Storage is the MySQL storage.Storage implementation.
type Storage struct {
	db     *sql.DB
	cfg    Config
	logger *zap.Logger
}

var _ storage.Storage = (*Storage)(nil)

// Open opens a connection pool and returns a Storage backed by it.
func Open(cfg Config, logger *zap.Logger) (*Storage, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, apperr.StorageError(fmt.Errorf("mysql: open: %w", err))
	}
	return &Storage{db: db, cfg: cfg, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error { return s.db.Close() }

func (s *Storage) BackendTag() string { return "mysql" }

// TranslateType maps an information_schema.DATA_TYPE string to the closed
// TypeKind set per the documented type mapping table, using MySQL's
// vocabulary (int/bigint/varchar/datetime, not Postgres's).
func (s *Storage) TranslateType(native string) (catalog.TypeKind, error) {
	n := strings.ToLower(native)
	switch n {
	case "int", "integer", "bigint", "smallint", "tinyint", "mediumint":
		return catalog.Integer, nil
	case "decimal", "numeric", "float", "double":
		return catalog.Float, nil
	case "varchar", "char", "text", "tinytext", "mediumtext", "longtext":
		return catalog.String, nil
	case "date", "datetime", "timestamp":
		return catalog.Date, nil
	default:
		return catalog.TypeKind(0), apperr.UnknownTypeError(native)
	}
}

// GetCatalog runs three information_schema queries and assembles a
// catalog.DbSchema, restricted to the configured allow-listed schemas.
func (s *Storage) GetCatalog(ctx context.Context) (catalog.DbSchema, error) {
	placeholder, args := schemaInClause(s.cfg.Schemas)

	tables := map[string]*catalog.Table{}
	var order []string

	colRows, err := s.db.QueryContext(ctx, strings.Replace(columnsQuery, "(?)", placeholder, 1), args...)
	if err != nil {
		return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("mysql: columns query: %w", err))
	}
	defer colRows.Close()
	for colRows.Next() {
		var schema, table, col, typ string
		if err := colRows.Scan(&schema, &table, &col, &typ); err != nil {
			return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("mysql: scan column: %w", err))
		}
		qn := schema + "." + table
		t, ok := tables[qn]
		if !ok {
			t = &catalog.Table{Schema: schema, Name: table}
			tables[qn] = t
			order = append(order, qn)
		}
		t.Attributes = append(t.Attributes, catalog.AttributeDef{Name: col, NativeType: typ})
	}
	if err := colRows.Err(); err != nil {
		return catalog.DbSchema{}, apperr.StorageError(err)
	}

	pkRows, err := s.db.QueryContext(ctx, strings.Replace(primaryKeysQuery, "(?)", placeholder, 1), args...)
	if err != nil {
		return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("mysql: primary key query: %w", err))
	}
	defer pkRows.Close()
	for pkRows.Next() {
		var schema, table, col string
		if err := pkRows.Scan(&schema, &table, &col); err != nil {
			return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("mysql: scan primary key: %w", err))
		}
		qn := schema + "." + table
		if t, ok := tables[qn]; ok {
			t.PrimaryKeys = append(t.PrimaryKeys, col)
		}
	}
	if err := pkRows.Err(); err != nil {
		return catalog.DbSchema{}, apperr.StorageError(err)
	}

	var foreignKeys []catalog.ForeignKey
	fkRows, err := s.db.QueryContext(ctx, strings.Replace(foreignKeysQuery, "(?)", placeholder, 1), args...)
	if err != nil {
		return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("mysql: foreign key query: %w", err))
	}
	defer fkRows.Close()
	for fkRows.Next() {
		var schema, table, col, dstSchema, dstTable, dstCol string
		if err := fkRows.Scan(&schema, &table, &col, &dstSchema, &dstTable, &dstCol); err != nil {
			return catalog.DbSchema{}, apperr.StorageError(fmt.Errorf("mysql: scan foreign key: %w", err))
		}
		foreignKeys = append(foreignKeys, catalog.ForeignKey{
			Origin:  catalog.ForeignKeyEndpoint{Schema: schema, Table: table, Attribute: col},
			Foreign: catalog.ForeignKeyEndpoint{Schema: dstSchema, Table: dstTable, Attribute: dstCol},
		})
	}
	if err := fkRows.Err(); err != nil {
		return catalog.DbSchema{}, apperr.StorageError(err)
	}

	result := catalog.DbSchema{ForeignKeys: foreignKeys}
	for _, qn := range order {
		result.Tables = append(result.Tables, *tables[qn])
	}
	return result, nil
}

// Execute runs sql and returns the result rows with every column value
// rendered as text. MySQL paths never mutate the projection, so column
// names need no `::TEXT` stripping.
func (s *Storage) Execute(ctx context.Context, query string) ([]storage.Row, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.StorageError(fmt.Errorf("mysql: execute: %w", err))
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, apperr.StorageError(err)
	}

	var out []storage.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, apperr.StorageError(fmt.Errorf("mysql: scan row: %w", err))
		}
		row := make(storage.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = fmt.Sprintf("%v", values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageError(err)
	}
	return out, nil
}

// schemaInClause builds a "(?, ?, ...)" placeholder list and matching args
// slice for an IN clause, since database/sql has no native slice binding.
func schemaInClause(schemas []string) (string, []any) {
	placeholders := make([]string, len(schemas))
	args := make([]any, len(schemas))
	for i, s := range schemas {
		placeholders[i] = "?"
		args[i] = s
	}
	return "(" + strings.Join(placeholders, ", ") + ")", args
}
