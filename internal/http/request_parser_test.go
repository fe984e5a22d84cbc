package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gastos/internal/core"

	"github.com/go-chi/chi/v5"
)

var fixedNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func formParser(t *testing.T, values url.Values) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestParseRecordInput(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		wantField string
		wantErr   error
	}{
		{
			name: "valid expense",
			form: url.Values{"tipo": {"gasto"}, "monto": {"3.50"}, "descripcion": {"coffee"}, "fecha": {"2024-03-10"}},
		},
		{
			name: "comma decimal",
			form: url.Values{"tipo": {"ingreso"}, "monto": {"1000,25"}, "descripcion": {"salary"}, "fecha": {"2024-03-01"}},
		},
		{
			name:      "unknown type",
			form:      url.Values{"tipo": {"loan"}, "monto": {"1"}, "descripcion": {"x"}},
			wantField: "tipo",
			wantErr:   core.ErrInvalidType,
		},
		{
			name:      "zero amount",
			form:      url.Values{"tipo": {"gasto"}, "monto": {"0"}, "descripcion": {"x"}},
			wantField: "monto",
			wantErr:   core.ErrInvalidAmount,
		},
		{
			name:      "non numeric amount",
			form:      url.Values{"tipo": {"gasto"}, "monto": {"abc"}, "descripcion": {"x"}},
			wantField: "monto",
			wantErr:   core.ErrInvalidAmount,
		},
		{
			name:      "bad date",
			form:      url.Values{"tipo": {"gasto"}, "monto": {"1"}, "descripcion": {"x"}, "fecha": {"10/03/2024"}},
			wantField: "fecha",
			wantErr:   core.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseRecordInput(formParser(t, tt.form), fixedNow)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if in.Date.String() != tt.form.Get("fecha") {
					t.Errorf("Date = %s, want %s", in.Date, tt.form.Get("fecha"))
				}
				return
			}
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField || !errors.Is(err, tt.wantErr) {
				t.Errorf("got field %q err %v, want %q %v", verr.Field, verr.Err, tt.wantField, tt.wantErr)
			}
		})
	}
}

func TestParseRecordInput_DefaultsAndKeepsDescription(t *testing.T) {
	in, err := ParseRecordInput(formParser(t, url.Values{
		"tipo":        {" expense "},
		"monto":       {"12.345"},
		"descripcion": {"  café\x01 "},
	}), fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Date.String() != "2024-03-10" {
		t.Errorf("blank date should default to today, got %s", in.Date)
	}
	if in.Description != "  café\x01 " {
		t.Errorf("Description = %q, want it as typed", in.Description)
	}
	if in.Type != core.Expense || in.Amount.String() != "12.345" {
		t.Errorf("unexpected record %+v", in.Record())
	}
}

func TestParseRangeParams(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantStart string
		wantEnd   string
		wantField string
	}{
		{"default today", url.Values{}, "2024-03-10", "2024-03-10", ""},
		{"last 7 days", url.Values{"range": {"7d"}}, "2024-03-03", "2024-03-10", ""},
		{"last 30 days", url.Values{"range": {"30d"}}, "2024-02-09", "2024-03-10", ""},
		{"custom", url.Values{"range": {"custom"}, "from": {"2024-01-01"}, "to": {"2024-01-31"}}, "2024-01-01", "2024-01-31", ""},
		{"custom missing from", url.Values{"range": {"custom"}, "to": {"2024-01-31"}}, "", "", "desde"},
		{"custom bad to", url.Values{"range": {"custom"}, "from": {"2024-01-01"}, "to": {"x"}}, "", "", "hasta"},
		{"unknown preset", url.Values{"range": {"year"}}, "", "", "rango"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseRangeParams(tt.query, fixedNow)
			if tt.wantField != "" {
				var verr *core.ValidationError
				if !errors.As(err, &verr) || verr.Field != tt.wantField {
					t.Fatalf("expected ValidationError on %q, got %v", tt.wantField, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := params.Range.Start.Format(core.DateLayout); got != tt.wantStart {
				t.Errorf("Start = %s, want %s", got, tt.wantStart)
			}
			if got := params.Range.End.Format(core.DateLayout); got != tt.wantEnd {
				t.Errorf("End = %s, want %s", got, tt.wantEnd)
			}
			if params.From.String() != tt.wantStart || params.To.String() != tt.wantEnd {
				t.Errorf("From/To = %s/%s", params.From, params.To)
			}
		})
	}
}

func TestParseRangeParams_InvertedCustomIsEmpty(t *testing.T) {
	params, err := ParseRangeParams(url.Values{"range": {"custom"}, "from": {"2024-02-01"}, "to": {"2024-01-01"}}, fixedNow)
	if err != nil {
		t.Fatalf("inverted range must not be an error: %v", err)
	}
	if !params.Range.Empty() {
		t.Errorf("expected empty range, got %+v", params.Range)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"12", 12, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/records/x", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("index", tt.raw)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		got, err := ParseIndex(req)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseIndex(%q) = %d, %v", tt.raw, got, err)
		}
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"tipo": "ingreso", "descripcion": "salary", "monto": 1000.10}`
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if v := parser.Get("tipo"); v != "ingreso" {
		t.Errorf("Get('tipo') = %q, want 'ingreso'", v)
	}
	// Numbers keep their literal text.
	if v := parser.Get("monto"); v != "1000.10" {
		t.Errorf("Get('monto') = %q, want '1000.10'", v)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "tipo=gasto&descripcion=form+test&monto=100"
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if v := parser.Get("descripcion"); v != "form test" {
		t.Errorf("Get('descripcion') = %q, want 'form test'", v)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(""))

	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	body := "tipo=gasto&monto=1&descripcion=" + strings.Repeat("a", maxBodyBytes)
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	err := NewRequestBodyParser(httptest.NewRecorder(), req).Parse()
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected *http.MaxBytesError, got %v", err)
	}
}

func TestRequestBodyParser_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(`{"tipo":`))
	req.Header.Set("Content-Type", "application/json")

	if err := NewRequestBodyParser(httptest.NewRecorder(), req).Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}
