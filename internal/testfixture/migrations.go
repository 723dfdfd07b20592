package testfixture

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var rawMigrations embed.FS

// Migrations is the goose migration set describing the movies demo
// catalog, the disconnected unrelated schema, and a small amount of seed
// data, rooted so goose.Up(db, ".") finds the files directly. Integration
// tests pass it to WithGooseUp.
func Migrations() fs.FS {
	sub, err := fs.Sub(rawMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
