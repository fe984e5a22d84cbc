// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// record submissions, summary range queries and positional indices.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// maxBodyBytes bounds record submissions; a record is four short fields.
const maxBodyBytes = 64 << 10

// RecordInput is a parsed record submission. Description is kept as typed;
// the store rejects it when it is blank after trimming.
type RecordInput struct {
	Type        core.RecordType
	Amount      decimal.Decimal
	Description string
	Date        core.Date
}

// Record returns the input as a record, for updates.
func (in RecordInput) Record() core.Record {
	return core.Record{Type: in.Type, Amount: in.Amount, Description: in.Description, Date: in.Date}
}

// ParseRecordInput reads tipo, monto, descripcion and fecha. A blank fecha
// means today. Field errors come back as *core.ValidationError.
func ParseRecordInput(p *RequestBodyParser, today time.Time) (RecordInput, error) {
	var in RecordInput

	t, err := core.ParseRecordType(p.Get("tipo"))
	if err != nil {
		return in, &core.ValidationError{Field: "tipo", Err: err}
	}
	in.Type = t

	amount, err := core.ParseAmount(p.Get("monto"))
	if err != nil {
		return in, &core.ValidationError{Field: "monto", Err: err}
	}
	in.Amount = amount

	in.Description = p.Raw("descripcion")

	if v := p.Get("fecha"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return in, &core.ValidationError{Field: "fecha", Err: err}
		}
		in.Date = d
	} else {
		in.Date = core.DateOf(today)
	}
	return in, nil
}

// RangeParams is a parsed summary range query.
type RangeParams struct {
	Preset core.Preset
	From   core.Date
	To     core.Date
	Range  core.Range
}

// ParseRangeParams reads range, from and to. from and to are only required
// for the custom preset; from after to yields an empty range, not an error.
func ParseRangeParams(query url.Values, now time.Time) (RangeParams, error) {
	var params RangeParams

	preset, err := core.ParsePreset(query.Get("range"))
	if err != nil {
		return params, &core.ValidationError{Field: "rango", Err: err}
	}
	params.Preset = preset

	if preset == core.PresetCustom {
		if params.From, err = core.ParseDate(query.Get("from")); err != nil {
			return params, &core.ValidationError{Field: "desde", Err: err}
		}
		if params.To, err = core.ParseDate(query.Get("to")); err != nil {
			return params, &core.ValidationError{Field: "hasta", Err: err}
		}
	}

	params.Range, err = core.PresetRange(preset, now, params.From, params.To)
	if err != nil {
		return params, err
	}
	if preset != core.PresetCustom {
		params.From = core.DateOf(params.Range.Start)
		params.To = core.DateOf(params.Range.End)
	}
	return params, nil
}

var errMalformedIndex = errors.New("malformed record index")

// ParseIndex reads the {index} route parameter.
func ParseIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "index")))
	if err != nil || idx < 0 {
		return 0, errMalformedIndex
	}
	return idx, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing. Bodies over
// maxBodyBytes fail Parse with *http.MaxBytesError.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || strings.Contains(p.contentType, "application/json") {
		p.jsonData = make(map[string]interface{})
		dec := json.NewDecoder(strings.NewReader(string(p.body)))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.Raw(key))
}

// Raw returns the value exactly as submitted.
func (p *RequestBodyParser) Raw(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stringValue(val)
		}
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string. Numbers keep their
// literal text so amounts are not rounded through float64.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
