package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"

	"gastos/internal/core"
	"gastos/internal/log"
)

// parseRecordBody reads a record submission. On failure the error response
// is already written.
func parseRecordBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	logger := log.FromContext(r.Context())
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		logger.WarnContext(r.Context(), "Parse body error", log.FieldError, err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			PayloadTooLargeError(msgBodyTooLarge).Write(w)
			return nil, false
		}
		BadRequestError("Formato de solicitud no válido").Write(w)
		return nil, false
	}
	logger.DebugContext(r.Context(), "Request body parsed", "json", p.IsJSON())
	return p, true
}

// handleCreateRecord appends a record from the registration form.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	p, ok := parseRecordBody(w, r)
	if !ok {
		return
	}

	in, err := ParseRecordInput(p, s.now())
	if err != nil {
		writeStoreError(w, r, log.OpAppend, err)
		return
	}

	idx, err := s.store.Append(r.Context(), in.Type, in.Amount, in.Description, in.Date)
	if err != nil {
		writeStoreError(w, r, log.OpAppend, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.recordsCreated, 1)

	msg := fmt.Sprintf("%s guardado correctamente.", in.Type.Label())
	NewHTMXResponse().
		TriggerRecordCreated(idx).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

type listView struct {
	Nav     string
	Records []recordView
	Empty   string
}

// handleListRecords renders every record with its current position. htmx
// requests get the list fragment only.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		writeStoreError(w, r, log.OpList, err)
		return
	}

	data := listView{Nav: "editar", Records: recordViews(entries)}
	if len(entries) == 0 {
		data.Empty = msgNothingToEdit
	}
	if isHTMX(r) {
		s.render(w, r, "record_list", data)
		return
	}
	s.render(w, r, "records.html", data)
}

// handleEditForm renders the edit form pre-filled with the selected record.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	idx, err := ParseIndex(r)
	if err != nil {
		writeStoreError(w, r, log.OpUpdate, err)
		return
	}
	rec, err := s.store.Get(r.Context(), idx)
	if err != nil {
		writeStoreError(w, r, log.OpUpdate, err)
		return
	}
	s.render(w, r, "edit_form", formView{Types: core.RecordTypes(), Record: newRecordView(core.Entry{Index: idx, Record: rec})})
}

// handleUpdateRecord replaces the record at {index}.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	idx, err := ParseIndex(r)
	if err != nil {
		writeStoreError(w, r, log.OpUpdate, err)
		return
	}

	p, ok := parseRecordBody(w, r)
	if !ok {
		return
	}
	in, err := ParseRecordInput(p, s.now())
	if err != nil {
		writeStoreError(w, r, log.OpUpdate, err)
		return
	}

	if err := s.store.Update(r.Context(), idx, in.Record()); err != nil {
		writeStoreError(w, r, log.OpUpdate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.recordsUpdated, 1)

	const msg = "Registro actualizado."
	NewHTMXResponse().
		TriggerRecordUpdated(idx).
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + msg + `</div>`).
		Write(w)
}

// handleDeleteRecord removes the record at {index}; later records move
// down one position.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	idx, err := ParseIndex(r)
	if err != nil {
		writeStoreError(w, r, log.OpDelete, err)
		return
	}

	if _, err := s.store.Delete(r.Context(), idx); err != nil {
		writeStoreError(w, r, log.OpDelete, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.recordsDeleted, 1)

	const msg = "Registro eliminado."
	NewHTMXResponse().
		TriggerRecordDeleted(idx).
		TriggerWarningNotification(msg).
		BodyHTML(`<div class="warning">` + msg + `</div>`).
		Write(w)
}
