package testfixture

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/storage/postgres"
)

// Sandbox is a single test's private schema within the shared container.
type Sandbox struct {
	DB         *sql.DB
	ConnString string
	Schema     string
	Seed       int64
	Close      func()
}

var (
	bootOnce sync.Once
	booted   bool
	bootErr  error
)

// BootOnce starts the shared container and applies migrations exactly once
// per test binary. Call it at the start of every sandboxed test, before
// NewSandbox; calls after the first only report the first call's result.
func BootOnce(t *testing.T, opts ...Option) {
	t.Helper()
	bootOnce.Do(func() {
		booted = true
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		cfg := &config{}
		for _, o := range opts {
			o(cfg)
		}
		if cfg.randomSeed == 0 {
			cfg.randomSeed = randomSeed()
		}

		bootErr = boot(ctx, cfg)
	})
	if bootErr != nil {
		t.Fatalf("testfixture boot failed: %v", bootErr)
	}
}

// NewSandbox creates a fresh schema inside the shared container, migrated
// identically to every other sandbox, and registers its teardown with t.
func NewSandbox(t *testing.T) *Sandbox {
	t.Helper()
	if !booted {
		t.Fatalf("testfixture not booted. Call testfixture.BootOnce(...) first.")
	}

	admin, err := sql.Open("pgx", connString) // admin connection (no search_path)
	if err != nil {
		t.Fatalf("open admin: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := fmt.Sprintf("t_%x", time.Now().UnixNano())

	if _, err := admin.ExecContext(ctx, `CREATE SCHEMA "`+schema+`"`); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	// The migrated catalog lives in the movies and unrelated schemas; the
	// sandbox schema is empty and sits first on the search_path (ahead of
	// public), so a test's unqualified scratch tables land in its own schema
	// beside the shared, already-migrated reference catalog without tests
	// stepping on each other's writes.
	sbxDSN := withSearchPath(connString, schema)

	db, err := sql.Open("pgx", sbxDSN)
	if err != nil {
		t.Fatalf("open sandbox: %v", err)
	}

	sbx := &Sandbox{
		DB:         db,
		ConnString: sbxDSN,
		Schema:     schema,
		Seed:       time.Now().UnixNano(),
	}
	sbx.Close = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = admin.ExecContext(ctx, `DROP SCHEMA IF EXISTS "`+schema+`" CASCADE`)
		_ = db.Close()
		_ = admin.Close()
	}
	t.Cleanup(sbx.Close)
	return sbx
}

// OpenStorage opens a storage/postgres.Storage against this sandbox's
// connection, introspecting schemas (DefaultSchemas if none are given). The
// sandbox's own per-test schema sits ahead of these on the search_path but
// is never itself passed to Schemas, since it starts out empty — it's
// scratch space for a test to write into, not catalog content to discover.
// Registers store.Close with t, same as the sandbox's own teardown.
func (s *Sandbox) OpenStorage(t *testing.T, schemas ...string) *postgres.Storage {
	t.Helper()
	if len(schemas) == 0 {
		schemas = DefaultSchemas
	}
	store, err := postgres.Open(context.Background(), postgres.Config{
		ConnString: s.ConnString,
		Schemas:    schemas,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("testfixture: open storage: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func withSearchPath(base, schema string) string {
	u, _ := url.Parse(base)
	q := u.Query()
	q.Set("options", fmt.Sprintf("-csearch_path=%s,public", schema))
	u.RawQuery = q.Encode()
	return u.String()
}

func randomSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}
