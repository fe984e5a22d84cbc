package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gastos/internal/core"
	"gastos/internal/log"

	"github.com/shopspring/decimal"
)

const (
	msgEmptyDescription = "La descripción no puede estar vacía."
	msgInvalidAmount    = "El monto debe ser un número mayor que cero."
	msgInvalidDate      = "La fecha no es válida (AAAA-MM-DD)."
	msgInvalidType      = "El tipo debe ser ingreso o gasto."
	msgInvalidRange     = "El periodo seleccionado no es válido."
	msgStaleIndex       = "El registro seleccionado ya no existe. Recarga el listado."
	msgMalformedIndex   = "Registro no válido."
	msgStorage          = "Error al guardar los datos."
	msgExport           = "Error al exportar los datos."
	msgNoRecordsPeriod  = "No hay registros en ese periodo."
	msgNothingToEdit    = "No hay registros para editar o eliminar."
	msgNothingToExport  = "No hay datos para exportar."
	msgBodyTooLarge     = "La solicitud es demasiado grande."
)

// validationMessage turns a field error into the prompt shown to the user.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return msgEmptyDescription
	case errors.Is(err, core.ErrInvalidAmount):
		return msgInvalidAmount
	case errors.Is(err, core.ErrInvalidDate):
		return msgInvalidDate
	case errors.Is(err, core.ErrInvalidType):
		return msgInvalidType
	case errors.Is(err, core.ErrInvalidPreset):
		return msgInvalidRange
	}
	return err.Error()
}

// writeStoreError maps domain errors to status codes: 422 for validation,
// 409 for a stale index, 400 for a malformed one and 500 otherwise.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		verr *core.ValidationError
		ierr *core.IndexError
		serr *core.StorageError
		eerr *core.ExportError
	)
	logger := log.FromContext(r.Context())

	switch {
	case errors.As(err, &verr):
		logger.WarnContext(r.Context(), "Validation failed",
			log.FieldOperation, op, "field", verr.Field, log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeValidation)
		UnprocessableEntityError(validationMessage(verr)).Write(w)
	case errors.As(err, &ierr):
		logger.WarnContext(r.Context(), "Stale record index",
			log.FieldOperation, op, log.FieldIndex, ierr.Index, log.FieldCount, ierr.Len,
			log.FieldErrorType, log.ErrorTypeIndex)
		ConflictError(msgStaleIndex).Write(w)
	case errors.Is(err, errMalformedIndex):
		BadRequestError(msgMalformedIndex).Write(w)
	case errors.As(err, &eerr):
		log.NewStructuredLogger(logger).LogError(r.Context(), "Export failed", err,
			log.ComponentExport, op, log.NewFields().WithErrorType(log.ErrorTypeExport))
		InternalServerError(msgExport).Write(w)
	case errors.As(err, &serr):
		log.NewStructuredLogger(logger).LogError(r.Context(), "Storage failure", err,
			log.ComponentStorage, op, log.NewFields().WithErrorType(log.ErrorTypeStorage))
		InternalServerError(msgStorage).Write(w)
	default:
		log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, op, log.NewFields().WithErrorType(log.ErrorTypeInternal))
		InternalServerError(msgStorage).Write(w)
	}
}

// sanitizeInput removes control characters except tab and newlines, and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

// recordView is a record prepared for the templates.
type recordView struct {
	Index       int
	Type        string
	TypeLabel   string
	IsIncome    bool
	Amount      string
	RawAmount   string
	Description string
	Date        string
	Label       string
}

func newRecordView(e core.Entry) recordView {
	return recordView{
		Index:       e.Index,
		Type:        e.Type.String(),
		TypeLabel:   e.Type.Label(),
		IsIncome:    e.Type == core.Income,
		Amount:      core.FormatCurrency(e.Amount),
		RawAmount:   e.Amount.String(),
		Description: e.Description,
		Date:        e.Date.String(),
		Label:       recordLabel(e.Record),
	}
}

func recordViews(entries []core.Entry) []recordView {
	out := make([]recordView, len(entries))
	for i, e := range entries {
		out[i] = newRecordView(e)
	}
	return out
}

// recordLabel renders the selection label, e.g. "gasto - coffee ($3.5) [2024-03-10]".
func recordLabel(r core.Record) string {
	return fmt.Sprintf("%s - %s ($%s) [%s]", r.Type, r.Description, r.Amount.String(), r.Date)
}

var hundred = decimal.NewFromInt(100)

// barWidths scales income and expense against the larger of the two,
// in whole percent. Non-zero values get at least 2% so they stay visible.
func barWidths(income, expense decimal.Decimal) (int, int) {
	top := decimal.Max(income, expense)
	if !top.IsPositive() {
		return 0, 0
	}
	width := func(v decimal.Decimal) int {
		if !v.IsPositive() {
			return 0
		}
		w := int(v.Mul(hundred).Div(top).Round(0).IntPart())
		if w < 2 {
			w = 2
		}
		if w > 100 {
			w = 100
		}
		return w
	}
	return width(income), width(expense)
}
