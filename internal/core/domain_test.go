package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-05", true},
		{" 2024-12-31 ", true},
		{"2024-02-30", false},
		{"05/01/2024", false},
		{"", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("case %d expected ErrInvalidDate, got %v", i, err)
		}
		if tc.ok && d.String() == "" {
			t.Fatalf("case %d expected formatted date", i)
		}
	}
}

func TestParseRecordType(t *testing.T) {
	for in, want := range map[string]RecordType{
		"ingreso": Income, "Income": Income, "gasto": Expense, " EXPENSE ": Expense,
	} {
		got, err := ParseRecordType(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseRecordType("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if Income.Label() != "Ingreso" || Expense.Label() != "Gasto" {
		t.Fatalf("unexpected labels %q %q", Income.Label(), Expense.Label())
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{
		Type:        Expense,
		Amount:      decimal.RequireFromString("50.00"),
		Description: "coffee",
		Date:        NewDate(2024, 1, 5),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		rec   Record
		field string
		cause error
	}{
		{Record{Type: "transfer", Amount: decimal.NewFromInt(1), Description: "a", Date: NewDate(2024, 1, 1)}, "tipo", ErrInvalidType},
		{Record{Type: Income, Amount: decimal.Zero, Description: "a", Date: NewDate(2024, 1, 1)}, "monto", ErrInvalidAmount},
		{Record{Type: Income, Amount: decimal.NewFromInt(-3), Description: "a", Date: NewDate(2024, 1, 1)}, "monto", ErrInvalidAmount},
		{Record{Type: Income, Amount: decimal.NewFromInt(1), Description: "   ", Date: NewDate(2024, 1, 1)}, "descripcion", ErrEmptyDescription},
		{Record{Type: Income, Amount: decimal.NewFromInt(1), Description: "a", Date: Date{Time: time.Time{}}}, "fecha", ErrInvalidDate},
	}
	for i, tc := range bads {
		err := tc.rec.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("case %d expected *ValidationError, got %v", i, err)
		}
		if verr.Field != tc.field || !errors.Is(err, tc.cause) {
			t.Fatalf("case %d expected %s/%v, got %s/%v", i, tc.field, tc.cause, verr.Field, verr.Err)
		}
	}
}

func TestRecordEqualComparesAmountsNumerically(t *testing.T) {
	a := Record{Type: Income, Amount: decimal.RequireFromString("1000"), Description: "salary", Date: NewDate(2024, 1, 1)}
	b := a
	b.Amount = decimal.RequireFromString("1000.00")
	if !a.Equal(b) {
		t.Fatalf("expected 1000 == 1000.00")
	}
	b.Description = "bonus"
	if a.Equal(b) {
		t.Fatalf("expected different descriptions to differ")
	}
}

func TestIndexed(t *testing.T) {
	recs := []Record{{Description: "a"}, {Description: "b"}}
	entries := Indexed(recs)
	if len(entries) != 2 || entries[1].Index != 1 || entries[1].Description != "b" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestErrorMessages(t *testing.T) {
	if msg := (&IndexError{Index: 5, Len: 2}).Error(); msg != "index 5 out of range [0,2)" {
		t.Fatalf("unexpected index error: %q", msg)
	}
	cause := errors.New("disk full")
	serr := &StorageError{Op: "save", Path: "finanzas.json", Err: cause}
	if !errors.Is(serr, cause) {
		t.Fatalf("storage error must unwrap its cause")
	}
	eerr := &ExportError{Path: "out.xlsx", Err: cause}
	if !errors.Is(eerr, cause) {
		t.Fatalf("export error must unwrap its cause")
	}
}
