package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/datenight/planner/internal/domain/model"
)

// SearchDependencies defines the interface for venue searches.
type SearchDependencies interface {
	Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error)
}

// SearchHandler handles restaurant and activity searches.
type SearchHandler struct {
	deps SearchDependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps SearchDependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

// HandleSearch returns the handler for GET /v1/{restaurants|activities}/search.
func (h *SearchHandler) HandleSearch(kind model.SearchKind) http.HandlerFunc {
	op := "api.search_" + string(kind)
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseSearchQuery(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		req, err := params.request(kind)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		resp, err := h.deps.Search(r.Context(), req)
		switch {
		case errors.Is(err, model.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
			return
		}
		writeJSON(w, http.StatusOK, toSearchResponse(resp))
	}
}
