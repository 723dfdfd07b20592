package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/catalog"
)

func TestTranslateType(t *testing.T) {
	s := &Storage{}

	cases := []struct {
		native string
		want   catalog.TypeKind
	}{
		{"int", catalog.Integer},
		{"BIGINT", catalog.Integer},
		{"tinyint", catalog.Integer},
		{"decimal", catalog.Float},
		{"double", catalog.Float},
		{"varchar", catalog.String},
		{"longtext", catalog.String},
		{"datetime", catalog.Date},
		{"timestamp", catalog.Date},
	}
	for _, c := range cases {
		got, err := s.TranslateType(c.native)
		require.NoError(t, err, c.native)
		assert.Equal(t, c.want, got, c.native)
	}
}

func TestTranslateTypeUnknown(t *testing.T) {
	s := &Storage{}
	_, err := s.TranslateType("blob")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnknownType))
}

func TestSchemaInClause(t *testing.T) {
	placeholder, args := schemaInClause([]string{"a", "b"})
	assert.Equal(t, "(?, ?)", placeholder)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestBackendTag(t *testing.T) {
	s := &Storage{}
	assert.Equal(t, "mysql", s.BackendTag())
}
