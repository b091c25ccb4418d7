package http

import (
	"context"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/engine"
	"finanzas/internal/log"
)

type transactionPage struct {
	Items      []core.Transaction `json:"items"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	TotalPages int                `json:"totalPages"`
	TotalItems int                `json:"totalItems"`
	Filter     engine.Mode        `json:"filter"`
	Version    uint64             `json:"version"`
}

type idResponse struct {
	ID string `json:"id"`
}

// viewFor returns the owner's current view, seen through the filter query
// parameter when one is given and the dashboard's active filter otherwise.
func (s *Server) viewFor(r *http.Request) (engine.View, error) {
	mode, ok, err := ParseFilter(r.URL.Query())
	if err != nil {
		return engine.View{}, err
	}
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	board := s.boards.Get(ownerOf(r))
	if ok {
		return board.ViewFor(ctx, mode)
	}
	return board.View(ctx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePageParams(r.URL.Query(), s.pageSize)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	view, err := s.viewFor(r)
	if err != nil {
		s.fail(w, r, "List transactions failed", err, log.OpList)
		return
	}
	items, pages, err := view.Page(params.Size, params.Page)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}

	NewJSONResponse().Body(transactionPage{
		Items:      items,
		Page:       params.Page,
		Size:       params.Size,
		TotalPages: pages,
		TotalItems: len(view.Filtered),
		Filter:     view.Mode,
		Version:    view.Version,
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerOf(r)
	t, err := ParseTransactionInput(NewRequestBodyParser(r), owner, today(s.now(), s.location))
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	id, err := s.writer.Create(r.Context(), t)
	if err != nil {
		s.fail(w, r, "Create transaction failed", err, log.OpCreate)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+id).
		Body(idResponse{ID: id}).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := ParseTransactionInput(NewRequestBodyParser(r), ownerOf(r), today(s.now(), s.location))
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	if err := s.writer.Update(r.Context(), id, t); err != nil {
		s.fail(w, r, "Update transaction failed", err, log.OpUpdate)
		return
	}
	NewJSONResponse().Body(idResponse{ID: id}).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.writer.Delete(r.Context(), ownerOf(r), r.PathValue("id")); err != nil {
		s.fail(w, r, "Delete transaction failed", err, log.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// fail writes the mapped error and logs it when it is the server's fault.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error, op string) {
	resp := ErrorFor(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.OpError(r.Context(), msg, err, log.ComponentHTTP, op, ownerOf(r))
	}
	resp.Write(w)
}
