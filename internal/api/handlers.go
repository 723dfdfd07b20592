package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/filterlang"
	"github.com/relsearch/search-service/internal/planner"
	"github.com/relsearch/search-service/internal/properties"
	"github.com/relsearch/search-service/internal/schemagraph"
)

// searchRequest is the POST /search body.
type searchRequest struct {
	Projection []string `json:"projection"`
	Filters    string   `json:"filters"`
}

func (h *handlers) handleProperties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	schema, err := h.storage.GetCatalog(ctx)
	if err != nil {
		writeError(w, h, err)
		return
	}
	graph := schemagraph.Build(schema)

	props, err := properties.Build(schema, graph, h.storage.TranslateType)
	if err != nil {
		writeError(w, h, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"properties": props})
}

func (h *handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h, apperr.ParseError("search: invalid request body: %v", err))
		return
	}

	cmd, err := filterlang.Parse(req.Filters)
	if err != nil {
		writeError(w, h, err)
		return
	}

	schema, err := h.storage.GetCatalog(ctx)
	if err != nil {
		writeError(w, h, err)
		return
	}
	graph := schemagraph.Build(schema)

	projection := decorateProjection(req.Projection, h.storage.BackendTag())

	sql, err := planner.Synthesize(projection, cmd, graph)
	if err != nil {
		writeError(w, h, err)
		return
	}

	rows, err := h.storage.Execute(ctx, sql)
	if err != nil {
		writeError(w, h, err)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decorateProjection appends a `::TEXT` suffix to every projected column
// when targeting Postgres, so every result column round-trips as text
// regardless of its native type. This is the pipeline's responsibility,
// not the synthesizer's, so it stays out of internal/planner.
func decorateProjection(projection []string, backendTag string) []string {
	if backendTag != "postgres" || len(projection) == 0 {
		return projection
	}
	out := make([]string, len(projection))
	for i, col := range projection {
		out[i] = col + "::TEXT"
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps an apperr.Kind to an HTTP status: ParseError is the
// collaborator's "bad request" category, everything else is "internal
// server error" — no other kind is ever surfaced more specifically.
func writeError(w http.ResponseWriter, h *handlers, err error) {
	status := http.StatusInternalServerError
	if apperr.Is(err, apperr.KindParse) {
		status = http.StatusBadRequest
	}

	h.logger.Error("request failed", zap.Error(err), zap.String("kind", string(apperr.KindOf(err))))
	writeJSON(w, status, map[string]string{"message": err.Error()})
}
