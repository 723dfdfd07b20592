// Package catalog holds the plain data model for a database's schema
// snapshot: tables, their attributes, primary keys, and foreign keys. It is
// produced atomically by a storage.Storage implementation and treated as
// immutable for the duration of a request.
package catalog

import "fmt"

// TypeKind is the closed set of canonical types the core reasons about.
// Native backend type strings are translated into this set by the storage
// adapter (storage.Storage.TranslateType); Attribute is a parse-time tag
// only and is never returned by a storage adapter.
type TypeKind int

const (
	Integer TypeKind = iota
	Float
	String
	Date
	Attribute
)

func (k TypeKind) String() string {
	switch k {
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	case Date:
		return "Date"
	case Attribute:
		return "Attribute"
	default:
		return "Unknown"
	}
}

// AttributeDef is a single column: its name and the backend's native type
// string (opaque to the core until translated).
type AttributeDef struct {
	Name       string
	NativeType string
}

// Table is a catalog table, identified canonically by "schema.name".
type Table struct {
	Schema      string
	Name        string
	Attributes  []AttributeDef
	PrimaryKeys []string
}

// QualifiedName returns the canonical "schema.name" identifier.
func (t Table) QualifiedName() string {
	return t.Schema + "." + t.Name
}

// ForeignKeyEndpoint names one side of a foreign key: a single column of a
// single table.
type ForeignKeyEndpoint struct {
	Schema    string
	Table     string
	Attribute string
}

// QualifiedTable returns the "schema.table" identifier for this endpoint.
func (e ForeignKeyEndpoint) QualifiedTable() string {
	return e.Schema + "." + e.Table
}

// ForeignKey is directional in record form (Origin -> Foreign) but the
// schema graph it feeds treats it as an undirected edge; directionality is
// informational only.
type ForeignKey struct {
	Origin  ForeignKeyEndpoint
	Foreign ForeignKeyEndpoint
}

// DbSchema is the catalog: every table and every foreign key in the
// (allow-listed) schemas a Storage adapter exposes.
type DbSchema struct {
	Tables      []Table
	ForeignKeys []ForeignKey
}

// TableByQualifiedName looks up a table by its "schema.name" identifier.
func (s DbSchema) TableByQualifiedName(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.QualifiedName() == name {
			return t, true
		}
	}
	return Table{}, false
}

// Validate enforces the catalog invariants from the data model: table
// identifiers are unique, every foreign-key endpoint names an existing
// table, and schema/table/column identifiers are non-empty.
func (s DbSchema) Validate() error {
	seen := make(map[string]struct{}, len(s.Tables))
	for _, t := range s.Tables {
		if t.Schema == "" || t.Name == "" {
			return fmt.Errorf("catalog: table with empty schema or name")
		}
		qn := t.QualifiedName()
		if _, dup := seen[qn]; dup {
			return fmt.Errorf("catalog: duplicate table identifier %q", qn)
		}
		seen[qn] = struct{}{}
		for _, a := range t.Attributes {
			if a.Name == "" {
				return fmt.Errorf("catalog: table %q has an attribute with an empty name", qn)
			}
		}
	}
	for _, fk := range s.ForeignKeys {
		for _, ep := range []ForeignKeyEndpoint{fk.Origin, fk.Foreign} {
			if ep.Schema == "" || ep.Table == "" || ep.Attribute == "" {
				return fmt.Errorf("catalog: foreign key with an empty identifier")
			}
			if _, ok := seen[ep.QualifiedTable()]; !ok {
				return fmt.Errorf("catalog: foreign key references unknown table %q", ep.QualifiedTable())
			}
		}
	}
	return nil
}
