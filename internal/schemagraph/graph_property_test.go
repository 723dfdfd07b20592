package schemagraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relsearch/search-service/internal/testfixture"
)

// Property: across many random catalog shapes, PathTo never contradicts
// itself — same-table queries always return a present zero-hop path,
// PathTo and Reachable always agree, and a returned path's labels are one
// shorter than its tables.
func TestPathToInvariantsAcrossRandomCatalogs(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		schema := testfixture.RandomCatalog(seed, 12)
		g := Build(schema)

		qualified := g.Tables()
		require.NotEmpty(t, qualified)

		for _, origin := range qualified {
			tables, labels, err := g.PathTo(origin, origin)
			require.NoError(t, err)
			assert.Equal(t, []string{origin}, tables)
			assert.Empty(t, labels)

			for _, destiny := range qualified {
				tables, labels, err := g.PathTo(origin, destiny)
				require.NoError(t, err)

				reachable, err := g.Reachable(origin, destiny)
				require.NoError(t, err)
				assert.Equal(t, len(tables) > 0, reachable, "seed=%d origin=%s destiny=%s", seed, origin, destiny)

				if len(tables) > 0 {
					assert.Len(t, labels, len(tables)-1, "seed=%d origin=%s destiny=%s", seed, origin, destiny)
					assert.Equal(t, origin, tables[0])
					assert.Equal(t, destiny, tables[len(tables)-1])
				} else {
					assert.Empty(t, labels)
				}
			}
		}
	}
}
