package filterlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/catalog"
)

func TestParseSimpleTerminal(t *testing.T) {
	cmd, err := Parse("movies.movie.runtime gt 200")
	require.NoError(t, err)
	require.NotNil(t, cmd.Single)
	assert.Equal(t, "movies.movie.runtime", cmd.Single.Attribute)
	assert.Equal(t, GreaterThan, cmd.Single.Op)
	assert.Equal(t, Value{Literal: "200", Kind: catalog.Integer}, cmd.Single.Value)
}

func TestParseLooseAnd(t *testing.T) {
	cmd, err := Parse("movies.movie.runtime gt 200 AND movies.movie.budget gt 1000000")
	require.NoError(t, err)
	require.NotNil(t, cmd.Composite)
	assert.Equal(t, And, cmd.Composite.Logical)
	require.Len(t, cmd.Composite.Children, 2)
	assert.Equal(t, "movies.movie.runtime", cmd.Composite.Children[0].Single.Attribute)
	assert.Equal(t, "movies.movie.budget", cmd.Composite.Children[1].Single.Attribute)
}

// S2 from the end-to-end scenarios: a grouped OR nested inside a loose AND.
func TestParseNestedComposite(t *testing.T) {
	cmd, err := Parse("(movies.movie.runtime gt 200 OR movies.movie.revenue gt 1000000) AND movies.movie.budget gt 1000000")
	require.NoError(t, err)
	require.NotNil(t, cmd.Composite)
	assert.Equal(t, And, cmd.Composite.Logical)

	left := cmd.Composite.Children[0]
	require.NotNil(t, left.Composite)
	assert.Equal(t, Or, left.Composite.Logical)
	assert.Equal(t, "movies.movie.runtime", left.Composite.Children[0].Single.Attribute)
	assert.Equal(t, "movies.movie.revenue", left.Composite.Children[1].Single.Attribute)

	right := cmd.Composite.Children[1]
	require.NotNil(t, right.Single)
	assert.Equal(t, "movies.movie.budget", right.Single.Attribute)
}

// S5: an attribute-valued terminal — both sides of the comparison are
// columns, and the value carries the Attribute kind, not String.
func TestParseAttributeValuedTerminal(t *testing.T) {
	cmd, err := Parse("movies.person.person_name eq movies.movie_cast.character_name")
	require.NoError(t, err)
	require.NotNil(t, cmd.Single)
	assert.Equal(t, catalog.Attribute, cmd.Single.Value.Kind)
	assert.Equal(t, "movies.movie_cast.character_name", cmd.Single.Value.Literal)
}

func TestParseStringLiteral(t *testing.T) {
	cmd, err := Parse("movies.country.country_name eq Brazil")
	require.NoError(t, err)
	assert.Equal(t, Value{Literal: "Brazil", Kind: catalog.String}, cmd.Single.Value)
}

// Design-note open question 1: a value like "3.14" parses as a float but
// contains a period, so it is not tagged Integer; it is not a three-segment
// identifier either, so it falls through to String.
func TestParseFloatLookingLiteralIsStringKind(t *testing.T) {
	cmd, err := Parse("movies.movie.rating eq 3.14")
	require.NoError(t, err)
	assert.Equal(t, catalog.String, cmd.Single.Value.Kind)
}

func TestParseNoPeriodNumericIsInteger(t *testing.T) {
	cmd, err := Parse("movies.movie.runtime eq 200")
	require.NoError(t, err)
	assert.Equal(t, catalog.Integer, cmd.Single.Value.Kind)
}

func TestParseUnknownOperatorFails(t *testing.T) {
	_, err := Parse("movies.movie.runtime foo 200")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindParse))
}

func TestParseWrongArityFails(t *testing.T) {
	_, err := Parse("movies.movie.runtime gt")
	require.Error(t, err)
}

func TestAttributesSortedAndDeduped(t *testing.T) {
	cmd, err := Parse("movies.movie.runtime gt 200 AND movies.movie.runtime gt 50")
	require.NoError(t, err)
	assert.Equal(t, []string{"movies.movie.runtime"}, Attributes(cmd))
}

func TestAttributesIncludesAttributeValuedLiteral(t *testing.T) {
	cmd, err := Parse("movies.person.person_name eq movies.movie_cast.character_name")
	require.NoError(t, err)
	assert.Equal(t, []string{"movies.movie_cast.character_name", "movies.person.person_name"}, Attributes(cmd))
}
