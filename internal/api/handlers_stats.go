package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleLayoutStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.LayoutStats == nil {
		jsonError(w, "layout stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"detector":    s.deps.LayoutMode,
		"queue_depth": s.deps.Orchestrator.QueueDepth(),
		"jobs":        s.deps.Orchestrator.JobCounts(),
		"stats":       s.deps.LayoutStats.Snapshot(),
	})
}
