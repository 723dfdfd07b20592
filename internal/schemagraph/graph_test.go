package schemagraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relsearch/search-service/internal/catalog"
)

func threeTableSchema() catalog.DbSchema {
	return catalog.DbSchema{
		Tables: []catalog.Table{
			{Schema: "public", Name: "actor", Attributes: []catalog.AttributeDef{{Name: "id"}}},
			{Schema: "public", Name: "film", Attributes: []catalog.AttributeDef{{Name: "id"}, {Name: "actor_id"}}},
			{Schema: "public", Name: "rental", Attributes: []catalog.AttributeDef{{Name: "id"}, {Name: "film_id"}}},
			{Schema: "public", Name: "isolated", Attributes: []catalog.AttributeDef{{Name: "id"}}},
		},
		ForeignKeys: []catalog.ForeignKey{
			{
				Origin:  catalog.ForeignKeyEndpoint{Schema: "public", Table: "film", Attribute: "actor_id"},
				Foreign: catalog.ForeignKeyEndpoint{Schema: "public", Table: "actor", Attribute: "id"},
			},
			{
				Origin:  catalog.ForeignKeyEndpoint{Schema: "public", Table: "rental", Attribute: "film_id"},
				Foreign: catalog.ForeignKeyEndpoint{Schema: "public", Table: "film", Attribute: "id"},
			},
		},
	}
}

func TestPathToDirectEdge(t *testing.T) {
	g := Build(threeTableSchema())
	tables, labels, err := g.PathTo("public.film", "public.actor")
	require.NoError(t, err)
	assert.Equal(t, []string{"public.film", "public.actor"}, tables)
	assert.Equal(t, []string{"actor_id:id"}, labels)
}

func TestPathToMultiHop(t *testing.T) {
	g := Build(threeTableSchema())
	tables, labels, err := g.PathTo("public.rental", "public.actor")
	require.NoError(t, err)
	assert.Equal(t, []string{"public.rental", "public.film", "public.actor"}, tables)
	assert.Equal(t, []string{"film_id:id", "actor_id:id"}, labels)
}

// The edge label is fixed at construction from the originating record and
// applied identically in both traversal directions — it is never flipped
// to read "id:actor_id" when walked from actor toward film.
func TestEdgeLabelNotSwappedByDirection(t *testing.T) {
	g := Build(threeTableSchema())

	_, forward, err := g.PathTo("public.film", "public.actor")
	require.NoError(t, err)
	_, backward, err := g.PathTo("public.actor", "public.film")
	require.NoError(t, err)

	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	assert.Equal(t, "actor_id:id", forward[0])
	assert.Equal(t, "actor_id:id", backward[0])
}

// Invariant 4: path_to(x, x) returns ([x], []) — a present, zero-hop path,
// not the same as "no path".
func TestPathToSameTable(t *testing.T) {
	g := Build(threeTableSchema())
	tables, labels, err := g.PathTo("public.actor", "public.actor")
	require.NoError(t, err)
	assert.Equal(t, []string{"public.actor"}, tables)
	assert.Empty(t, labels)
}

func TestPathToUnreachable(t *testing.T) {
	g := Build(threeTableSchema())
	tables, labels, err := g.PathTo("public.actor", "public.isolated")
	require.NoError(t, err)
	assert.Nil(t, tables)
	assert.Nil(t, labels)
}

func TestPathToUnknownTable(t *testing.T) {
	g := Build(threeTableSchema())
	_, _, err := g.PathTo("public.actor", "public.nope")
	require.Error(t, err)
	var notFound *ErrTableNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "public.nope", notFound.Table)
}

func TestJoinableTables(t *testing.T) {
	g := Build(threeTableSchema())
	tables, labels, err := g.JoinableTables("public.rental")
	require.NoError(t, err)
	require.Len(t, labels, len(tables))
	assert.ElementsMatch(t, []string{"public.rental", "public.film", "public.actor"}, tables)
	assert.NotContains(t, tables, "public.isolated")
	assert.Equal(t, "", labels[0])
	for _, l := range labels[1:] {
		assert.NotEmpty(t, l)
	}
}

func TestReachable(t *testing.T) {
	g := Build(threeTableSchema())

	ok, err := g.Reachable("public.rental", "public.actor")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Reachable("public.actor", "public.isolated")
	require.NoError(t, err)
	assert.False(t, ok)
}
