package google

import (
	"fmt"
	"strings"

	"gastos/internal/core"

	"github.com/shopspring/decimal"
)

func recordRow(r core.Record) []any {
	return []any{r.Type.String(), r.Amount.InexactFloat64(), r.Description, r.Date.String()}
}

func toRow(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// parseRows converts a values matrix as returned by the Sheets API into
// records. A leading header row is skipped and blank rows are ignored; any
// other malformed row is an error naming its sheet row number.
func parseRows(values [][]any) ([]core.Record, error) {
	out := make([]core.Record, 0, len(values))
	for i, raw := range values {
		cols := toStrings(raw)
		if i == 0 && len(cols) > 0 && strings.EqualFold(cols[0], "tipo") {
			continue
		}
		if blank(cols) {
			continue
		}
		if len(cols) < 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i+1, len(cols))
		}
		t, err := core.ParseRecordType(cols[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: tipo %q: %w", i+1, cols[0], err)
		}
		amount, err := parseAmountCell(raw[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: monto %q: %w", i+1, cols[1], err)
		}
		date, err := core.ParseDate(cols[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: fecha %q: %w", i+1, cols[3], err)
		}
		out = append(out, core.Record{Type: t, Amount: amount, Description: cols[2], Date: date})
	}
	return out, nil
}

// parseAmountCell accepts numbers as decoded from JSON or their string form,
// with either decimal separator.
func parseAmountCell(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	}
	s := strings.ReplaceAll(strings.TrimSpace(fmt.Sprint(v)), ",", ".")
	return decimal.NewFromString(s)
}

func blank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}
