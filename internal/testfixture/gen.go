package testfixture

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/go-faker/faker/v4"

	"github.com/relsearch/search-service/internal/catalog"
)

// seededRand turns an integer seed into a *rand.Rand by running it through
// one round of a throwaway source first, so a seed of 0 or 1 doesn't produce
// visibly-correlated catalogs — the only place in this service that needs a
// deterministic-but-decorrelated seed, so it lives here rather than as its
// own package.
func seededRand(seed int64) *rand.Rand {
	scramble := rand.New(rand.NewSource(seed))
	var buf [8]byte
	for i := 0; i < len(buf); i += 8 {
		binary.LittleEndian.PutUint64(buf[i:], uint64(scramble.Int63()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(buf[:]))))
}

// RandomCatalog builds a catalog.DbSchema with tableCount tables spread
// across a handful of schemas, each carrying a few faker-named attributes,
// then wires a random forest of foreign keys between them so roughly half
// the tables land in one connected component and half in singleton or
// small components. The shape (schemas, attribute counts, and the
// foreign-key forest) is fixed by the seed; the faker words in table and
// column names are not, since faker draws them from its own random source.
// Used by schemagraph/planner/properties property tests that check
// invariants hold across many random catalog shapes rather than one fixed
// fixture.
func RandomCatalog(seed int64, tableCount int) catalog.DbSchema {
	rng := seededRand(seed)

	schemas := []string{"s_a", "s_b", "s_c"}
	var tables []catalog.Table
	for i := 0; i < tableCount; i++ {
		schema := schemas[rng.Intn(len(schemas))]
		name := fmt.Sprintf("%s_%d", faker.Word(), i)

		attrCount := 2 + rng.Intn(3)
		attrs := make([]catalog.AttributeDef, attrCount)
		attrs[0] = catalog.AttributeDef{Name: "id", NativeType: "integer"}
		for j := 1; j < attrCount; j++ {
			attrs[j] = catalog.AttributeDef{Name: fmt.Sprintf("%s_%d", faker.Word(), j), NativeType: "text"}
		}

		tables = append(tables, catalog.Table{
			Schema:      schema,
			Name:        name,
			Attributes:  attrs,
			PrimaryKeys: []string{"id"},
		})
	}

	var fks []catalog.ForeignKey
	// Every table past the first may point at an earlier table, forming a
	// random forest: this guarantees no cycles while still producing
	// multi-hop connected components for the BFS path search to traverse.
	for i := 1; i < len(tables); i++ {
		if rng.Intn(3) == 0 {
			continue // this table starts a new component; later tables may still link to it
		}
		target := rng.Intn(i)
		fks = append(fks, catalog.ForeignKey{
			Origin: catalog.ForeignKeyEndpoint{
				Schema:    tables[i].Schema,
				Table:     tables[i].Name,
				Attribute: "id",
			},
			Foreign: catalog.ForeignKeyEndpoint{
				Schema:    tables[target].Schema,
				Table:     tables[target].Name,
				Attribute: "id",
			},
		})
	}

	return catalog.DbSchema{Tables: tables, ForeignKeys: fks}
}
