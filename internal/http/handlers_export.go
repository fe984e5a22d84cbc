package http

import (
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"gastos/internal/core"
	"gastos/internal/export"
	"gastos/internal/log"
)

// handleExport writes the ledger to the export file and serves it as a
// download. With no records it shows a warning instead.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Load(r.Context())
	if err != nil {
		writeStoreError(w, r, log.OpExport, err)
		return
	}

	if len(records) == 0 {
		if isHTMX(r) {
			NewHTMXResponse().
				TriggerWarningNotification(msgNothingToExport).
				BodyHTML(`<div class="warning">` + msgNothingToExport + `</div>`).
				Write(w)
			return
		}
		s.render(w, r, "export.html", struct {
			Nav     string
			Warning string
		}{Nav: "exportar", Warning: msgNothingToExport})
		return
	}

	path, err := s.exporter.Export(r.Context(), records)
	if err != nil {
		writeStoreError(w, r, log.OpExport, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeStoreError(w, r, log.OpExport, &core.ExportError{Path: path, Err: err})
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		writeStoreError(w, r, log.OpExport, &core.ExportError{Path: path, Err: err})
		return
	}

	atomic.AddInt64(&s.appMetrics.exports, 1)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Export served",
		log.FieldExportPath, path,
		log.FieldCount, len(records))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}
