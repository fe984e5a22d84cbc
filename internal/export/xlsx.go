// Package export writes the record sequence to an .xlsx workbook.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gastos/internal/core"
	"gastos/internal/log"

	"github.com/xuri/excelize/v2"
)

const (
	DefaultPath = "finanzas_export.xlsx"
	SheetName   = "Sheet1"

	// ContentType is the MIME type of the produced workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Header is the first row of the exported sheet.
var Header = []string{"tipo", "monto", "descripcion", "fecha"}

// XLSXExporter writes every export to the same path, replacing the
// previous file.
type XLSXExporter struct {
	path   string
	logger *log.Logger
}

func NewXLSXExporter(path string, logger *log.Logger) *XLSXExporter {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &XLSXExporter{path: path, logger: logger.WithComponent(log.ComponentExport)}
}

func (e *XLSXExporter) Path() string { return e.path }

// Export writes a header row and one row per record, in order, and returns
// the written path. An empty sequence yields a header-only sheet.
func (e *XLSXExporter) Export(ctx context.Context, records []core.Record) (string, error) {
	f, err := Workbook(records)
	if err != nil {
		return "", &core.ExportError{Path: e.path, Err: err}
	}
	defer f.Close()

	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", &core.ExportError{Path: e.path, Err: fmt.Errorf("create directory: %w", err)}
		}
	}
	if err := f.SaveAs(e.path); err != nil {
		return "", &core.ExportError{Path: e.path, Err: fmt.Errorf("save workbook: %w", err)}
	}

	e.logger.InfoContext(ctx, "Records exported",
		log.FieldExportPath, e.path,
		log.FieldCount, len(records))
	return e.path, nil
}

// Workbook builds the in-memory workbook. The caller closes it.
func Workbook(records []core.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{r.Type.String(), r.Amount.InexactFloat64(), r.Description, r.Date.String()}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return f, nil
}
