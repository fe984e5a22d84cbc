// Package jsonfile stores the record sequence as a JSON array in a single
// file, the format read and written by earlier versions of the tracker:
//
//	[
//	    {
//	        "tipo": "gasto",
//	        "monto": 50.0,
//	        "descripcion": "coffee",
//	        "fecha": "2024-01-05"
//	    }
//	]
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/core"

	"github.com/shopspring/decimal"
)

const DefaultPath = "finanzas.json"

const indent = "    "

type wireRecord struct {
	Tipo        string      `json:"tipo"`
	Monto       json.Number `json:"monto"`
	Descripcion string      `json:"descripcion"`
	Fecha       string      `json:"fecha"`
}

// File is a whole-snapshot store backed by one JSON file. It holds no state
// between calls.
type File struct {
	path string
}

func New(path string) *File {
	if path == "" {
		path = DefaultPath
	}
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// Load reads the file. A missing file is an empty sequence; anything that is
// not an array of well-formed records is a *core.StorageError.
func (f *File) Load(ctx context.Context) ([]core.Record, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []core.Record{}, nil
	}
	if err != nil {
		return nil, f.storageErr("load", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var wire []wireRecord
	if err := dec.Decode(&wire); err != nil {
		return nil, f.storageErr("load", fmt.Errorf("decode: %w", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, f.storageErr("load", errors.New("decode: trailing data after record array"))
	}

	records := make([]core.Record, 0, len(wire))
	for i, w := range wire {
		rec, err := w.decode()
		if err != nil {
			return nil, f.storageErr("load", fmt.Errorf("record %d: %w", i, err))
		}
		records = append(records, rec)
	}

	slog.DebugContext(ctx, "Records loaded from file", "path", f.path, "count", len(records))
	return records, nil
}

// Save overwrites the file with records. The new content is written to a
// temporary file in the same directory and renamed into place.
func (f *File) Save(ctx context.Context, records []core.Record) error {
	wire := make([]wireRecord, len(records))
	for i, r := range records {
		wire[i] = wireRecord{
			Tipo:        r.Type.String(),
			Monto:       json.Number(r.Amount.String()),
			Descripcion: r.Description,
			Fecha:       r.Date.String(),
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(wire); err != nil {
		return f.storageErr("save", fmt.Errorf("encode: %w", err))
	}

	if err := writeAtomic(f.path, buf.Bytes()); err != nil {
		return f.storageErr("save", err)
	}

	slog.DebugContext(ctx, "Records saved to file", "path", f.path, "count", len(records))
	return nil
}

func (f *File) storageErr(op string, err error) error {
	return &core.StorageError{Op: op, Path: f.path, Err: err}
}

func (w wireRecord) decode() (core.Record, error) {
	t, err := core.ParseRecordType(w.Tipo)
	if err != nil {
		return core.Record{}, fmt.Errorf("tipo %q: %w", w.Tipo, err)
	}
	amount, err := decimal.NewFromString(w.Monto.String())
	if err != nil {
		return core.Record{}, fmt.Errorf("monto %q: %w", w.Monto, err)
	}
	date, err := core.ParseDate(w.Fecha)
	if err != nil {
		return core.Record{}, fmt.Errorf("fecha %q: %w", w.Fecha, err)
	}
	return core.Record{Type: t, Amount: amount, Description: w.Descripcion, Date: date}, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}
