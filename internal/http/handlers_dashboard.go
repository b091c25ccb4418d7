package http

import (
	"net/http"

	"finanzas/internal/engine"
	"finanzas/internal/log"
)

type dashboardResponse struct {
	engine.View
	FilteredCount int `json:"filteredCount"`
}

// handleDashboard returns the balance card, summary, category slices,
// monthly series and recent records of the owner's current snapshot.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.viewFor(r)
	if err != nil {
		s.fail(w, r, "Dashboard failed", err, log.OpList)
		return
	}
	NewJSONResponse().Body(dashboardResponse{View: view, FilteredCount: len(view.Filtered)}).Write(w)
}

// handleSetFilter changes the owner's active filter. The dashboard recomputes
// in the background; later reads without a filter parameter see the result.
func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		ErrorFor(err).Write(w)
		return
	}
	mode, err := engine.ParseMode(p.Get("filter"))
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	if err := s.boards.Get(ownerOf(r)).SetFilter(mode); err != nil {
		s.fail(w, r, "Set filter failed", err, log.OpList)
		return
	}
	NewJSONResponse().Body(map[string]engine.Mode{"filter": mode}).Write(w)
}
