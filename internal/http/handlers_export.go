package http

import (
	"context"
	"net/http"
	"strconv"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	"finanzas/internal/engine"
	"finanzas/internal/export"
	"finanzas/internal/log"
)

type exportFormat struct {
	kind        string
	filename    string
	contentType string
	render      func([]core.Transaction) ([]byte, error)
}

var (
	csvFormat = exportFormat{
		kind:        "csv",
		filename:    engine.CSVFilename,
		contentType: engine.CSVContentType,
		render: func(txs []core.Transaction) ([]byte, error) {
			return []byte(engine.ToCSV(txs)), nil
		},
	}
	xlsxFormat = exportFormat{
		kind:        "xlsx",
		filename:    export.XLSXFilename,
		contentType: export.XLSXContentType,
		render:      export.XLSX,
	}
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, csvFormat)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, xlsxFormat)
}

// serveExport renders the owner's whole snapshot, unfiltered. Renders are
// cached per dashboard epoch and snapshot version; a new render drops the
// owner's older ones.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, f exportFormat) {
	owner := ownerOf(r)
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	board := s.boards.Get(owner)
	snap, version, err := board.Snapshot(ctx)
	if err != nil {
		s.fail(w, r, "Export failed", err, log.OpExport)
		return
	}

	key := cache.Key(f.kind, owner, board.Epoch(), version)
	data, hit := s.exports.Get(key)
	if !hit {
		if data, err = f.render(snap); err != nil {
			s.fail(w, r, "Export render failed", err, log.OpExport)
			return
		}
		s.exports.DeletePrefix(cache.OwnerPrefix(f.kind, owner))
		s.exports.Set(key, data)
	}
	log.FromContext(ctx).DebugContext(ctx, "Export served",
		"format", f.kind,
		log.FieldVersion, version,
		log.FieldCount, len(snap),
		"cache_hit", hit)

	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set("Content-Disposition", attachment(f.filename))
	w.Header().Set("X-Snapshot-Version", strconv.FormatUint(version, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
