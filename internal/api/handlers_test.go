package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/catalog"
	"github.com/relsearch/search-service/internal/storage"
)

type fakeStorage struct {
	schema     catalog.DbSchema
	backendTag string
	rows       []storage.Row
	lastSQL    string
}

func (f *fakeStorage) GetCatalog(context.Context) (catalog.DbSchema, error) { return f.schema, nil }

func (f *fakeStorage) TranslateType(native string) (catalog.TypeKind, error) {
	switch native {
	case "integer":
		return catalog.Integer, nil
	case "text":
		return catalog.String, nil
	default:
		return catalog.TypeKind(0), apperr.UnknownTypeError(native)
	}
}

func (f *fakeStorage) Execute(_ context.Context, sql string) ([]storage.Row, error) {
	f.lastSQL = sql
	return f.rows, nil
}

func (f *fakeStorage) BackendTag() string { return f.backendTag }

func newTestHandlers(store storage.Storage) http.Handler {
	return SetupRoutes(store, zap.NewNop())
}

func moviesSchema() catalog.DbSchema {
	return catalog.DbSchema{
		Tables: []catalog.Table{
			{
				Schema: "movies",
				Name:   "movie",
				Attributes: []catalog.AttributeDef{
					{Name: "movie_id", NativeType: "integer"},
					{Name: "title", NativeType: "text"},
					{Name: "runtime", NativeType: "integer"},
				},
				PrimaryKeys: []string{"movie_id"},
			},
		},
	}
}

func TestHandleHealthz(t *testing.T) {
	h := newTestHandlers(&fakeStorage{schema: moviesSchema(), backendTag: "postgres"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandlePropertiesReturnsSubsets(t *testing.T) {
	h := newTestHandlers(&fakeStorage{schema: moviesSchema(), backendTag: "postgres"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/properties", nil)
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body, "properties")
}

func TestHandleSearchDecoratesProjectionForPostgres(t *testing.T) {
	store := &fakeStorage{
		schema:     moviesSchema(),
		backendTag: "postgres",
		rows:       []storage.Row{{"title": "City of Rain"}},
	}
	h := newTestHandlers(store)

	body, _ := json.Marshal(searchRequest{
		Projection: []string{"movies.movie.title"},
		Filters:    "movies.movie.runtime gt 200",
	})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, store.lastSQL, "movies.movie.title::TEXT")
	assert.Contains(t, store.lastSQL, "(movies.movie.runtime > 200)")
}

func TestHandleSearchInvalidFilterIsBadRequest(t *testing.T) {
	store := &fakeStorage{schema: moviesSchema(), backendTag: "postgres"}
	h := newTestHandlers(store)

	body, _ := json.Marshal(searchRequest{
		Projection: []string{"movies.movie.title"},
		Filters:    "not a valid filter",
	})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSearchMalformedBodyIsBadRequest(t *testing.T) {
	store := &fakeStorage{schema: moviesSchema(), backendTag: "postgres"}
	h := newTestHandlers(store)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte("{not json")))
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
