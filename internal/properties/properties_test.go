package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/catalog"
	"github.com/relsearch/search-service/internal/schemagraph"
)

func passthroughTranslate(native string) (catalog.TypeKind, error) {
	switch native {
	case "integer":
		return catalog.Integer, nil
	case "text":
		return catalog.String, nil
	default:
		return catalog.TypeKind(0), apperr.UnknownTypeError(native)
	}
}

// S6 — properties on a disconnected catalog: two independent components
// must yield exactly two subsets, with every attribute indexed exactly
// once.
func TestBuildDisconnectedCatalogTwoSubsets(t *testing.T) {
	schema := catalog.DbSchema{
		Tables: []catalog.Table{
			{Schema: "movies", Name: "movie", Attributes: []catalog.AttributeDef{
				{Name: "title", NativeType: "text"},
				{Name: "runtime", NativeType: "integer"},
			}},
			{Schema: "movies", Name: "production_country", Attributes: []catalog.AttributeDef{
				{Name: "movie_id", NativeType: "integer"},
			}},
			{Schema: "billing", Name: "invoice", Attributes: []catalog.AttributeDef{
				{Name: "amount", NativeType: "integer"},
			}},
		},
		ForeignKeys: []catalog.ForeignKey{
			{
				Origin:  catalog.ForeignKeyEndpoint{Schema: "movies", Table: "production_country", Attribute: "movie_id"},
				Foreign: catalog.ForeignKeyEndpoint{Schema: "movies", Table: "movie", Attribute: "movie_id"},
			},
		},
	}
	g := schemagraph.Build(schema)

	props, err := Build(schema, g, passthroughTranslate)
	require.NoError(t, err)

	require.Len(t, props.Subsets, 2)

	seen := map[int]bool{}
	for _, subset := range props.Subsets {
		for _, idx := range subset {
			require.False(t, seen[idx], "attribute index %d indexed more than once", idx)
			seen[idx] = true
		}
	}
	assert.Len(t, seen, len(props.Attributes))
	assert.Len(t, props.Operators, 6)
	assert.Len(t, props.LogicalOperators, 2)
}

func TestBuildSubsetIDsAreDense(t *testing.T) {
	schema := catalog.DbSchema{
		Tables: []catalog.Table{
			{Schema: "a", Name: "one", Attributes: []catalog.AttributeDef{{Name: "x", NativeType: "integer"}}},
			{Schema: "b", Name: "two", Attributes: []catalog.AttributeDef{{Name: "y", NativeType: "integer"}}},
		},
	}
	g := schemagraph.Build(schema)
	props, err := Build(schema, g, passthroughTranslate)
	require.NoError(t, err)

	for i := range props.Subsets {
		for _, idx := range props.Subsets[i] {
			assert.Equal(t, i, props.Attributes[idx].SubsetID)
		}
	}
}
