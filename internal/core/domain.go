package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and form representation of a record date.
const DateLayout = "2006-01-02"

const (
	Income  RecordType = "ingreso"
	Expense RecordType = "gasto"
)

type (
	RecordType string

	Date struct {
		time.Time
	}

	// Record is a single income or expense entry. Records carry no identifier:
	// they are addressed by their position in the stored sequence.
	Record struct {
		Type        RecordType
		Amount      decimal.Decimal
		Description string
		Date        Date
	}

	// Entry pairs a record with its position at the time it was loaded.
	Entry struct {
		Index int
		Record
	}
)

var (
	ErrInvalidType      = errors.New("invalid record type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidDate      = errors.New("invalid date")
)

// RecordTypes lists the accepted types in display order.
func RecordTypes() []RecordType {
	return []RecordType{Income, Expense}
}

// ParseRecordType accepts the persisted names and their English aliases.
func ParseRecordType(s string) (RecordType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ingreso", "income":
		return Income, nil
	case "gasto", "expense":
		return Expense, nil
	}
	return "", ErrInvalidType
}

func (t RecordType) Valid() bool {
	return t == Income || t == Expense
}

func (t RecordType) String() string {
	return string(t)
}

// Label returns the capitalised display name ("Ingreso", "Gasto").
func (t RecordType) Label() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// NewRecord builds a record and validates it.
func NewRecord(t RecordType, amount decimal.Decimal, description string, date Date) (Record, error) {
	r := Record{Type: t, Amount: amount, Description: description, Date: date}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate reports the first invalid field as a *ValidationError.
func (r Record) Validate() error {
	if !r.Type.Valid() {
		return &ValidationError{Field: "tipo", Err: ErrInvalidType}
	}
	if !r.Amount.IsPositive() {
		return &ValidationError{Field: "monto", Err: ErrInvalidAmount}
	}
	if strings.TrimSpace(r.Description) == "" {
		return &ValidationError{Field: "descripcion", Err: ErrEmptyDescription}
	}
	if err := r.Date.Validate(); err != nil {
		return &ValidationError{Field: "fecha", Err: err}
	}
	return nil
}

// Equal compares records field by field; amounts compare numerically.
func (r Record) Equal(o Record) bool {
	return r.Type == o.Type &&
		r.Amount.Equal(o.Amount) &&
		r.Description == o.Description &&
		r.Date.Equal(o.Date.Time)
}

// Indexed attaches positions to a loaded sequence.
func Indexed(records []Record) []Entry {
	out := make([]Entry, len(records))
	for i, r := range records {
		out[i] = Entry{Index: i, Record: r}
	}
	return out
}
