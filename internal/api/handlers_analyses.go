package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pdfstruct/internal/store"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

// handleListAnalyses lists stored analyses for a user, newest first.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	list, err := s.deps.Store.List(r.Context(), userID, limit)
	if err != nil {
		jsonError(w, "failed to list analyses: "+err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]map[string]any, 0, len(list))
	for _, a := range list {
		items = append(items, map[string]any{
			"id":           a.ID,
			"doc_id":       a.DocID,
			"filename":     a.Filename,
			"format":       a.Format,
			"content_hash": a.ContentHash,
			"created_at":   a.CreatedAt,
			"metadata":     a.Result.Metadata,
			"counts":       a.Result.Counts,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"analyses": items})
}

// handleGetAnalysis returns one analysis. min_len filters the paragraphs
// and their count in the response without changing what is stored.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadAnalysis(w, r)
	if !ok {
		return
	}
	if v := r.URL.Query().Get("min_len"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "min_len must be a non-negative integer", http.StatusBadRequest)
			return
		}
		a.Result.Paragraphs = structure.FilterParagraphs(a.Result.Paragraphs, n)
		a.Result.Recount()
	}
	if r.URL.Query().Get("raw") != "true" {
		a.RawText = ""
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

// handleDeleteAnalysis removes an analysis and anything published for it.
func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadAnalysis(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := s.deps.Store.Delete(ctx, a.ID); err != nil {
		jsonError(w, "failed to delete analysis: "+err.Error(), http.StatusInternalServerError)
		return
	}

	unpublished := false
	if s.deps.Pathstore != nil {
		if err := s.deps.Pathstore.UnpublishDocument(ctx, a.UserID, a.DocID); err != nil {
			s.log.Warn("unpublish failed", "analysis_id", a.ID, "error", err)
		} else {
			unpublished = true
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"deleted":     a.ID,
		"unpublished": unpublished,
	})
}

func (s *Server) loadAnalysis(w http.ResponseWriter, r *http.Request) (*store.Analysis, bool) {
	id := chi.URLParam(r, "id")
	a, err := s.deps.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "analysis not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		jsonError(w, "failed to load analysis: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return a, true
}
