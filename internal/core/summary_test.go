package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func rec(t RecordType, amount, desc string, y, m, d int) Record {
	return Record{Type: t, Amount: decimal.RequireFromString(amount), Description: desc, Date: NewDate(y, m, d)}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if !s.TotalIncome.IsZero() || !s.TotalExpense.IsZero() || !s.Balance.IsZero() {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSummarizeScenario(t *testing.T) {
	s := Summarize([]Record{
		rec(Expense, "50.00", "coffee", 2024, 1, 5),
		rec(Income, "1000.00", "salary", 2024, 1, 1),
	})
	want := Summary{
		TotalIncome:  decimal.RequireFromString("1000"),
		TotalExpense: decimal.RequireFromString("50"),
		Balance:      decimal.RequireFromString("950"),
	}
	if !s.Equal(want) {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
}

func TestSummarizeKeepsPrecision(t *testing.T) {
	s := Summarize([]Record{
		rec(Income, "0.1", "a", 2024, 1, 1),
		rec(Income, "0.2", "b", 2024, 1, 1),
		rec(Expense, "0.005", "c", 2024, 1, 1),
	})
	if !s.TotalIncome.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("expected exact 0.3, got %s", s.TotalIncome)
	}
	if !s.Balance.Equal(decimal.RequireFromString("0.295")) {
		t.Fatalf("expected exact 0.295, got %s", s.Balance)
	}
}

func TestSummarizeIsAdditive(t *testing.T) {
	a := []Record{
		rec(Income, "10.10", "a", 2024, 1, 1),
		rec(Expense, "3.33", "b", 2024, 1, 2),
	}
	b := []Record{
		rec(Expense, "7.77", "c", 2024, 2, 1),
		rec(Income, "0.01", "d", 2024, 2, 2),
		rec(Expense, "100", "e", 2024, 2, 3),
	}
	union := append(append([]Record{}, a...), b...)
	if got, want := Summarize(union), Summarize(a).Add(Summarize(b)); !got.Equal(want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSummarizeEntries(t *testing.T) {
	entries := Indexed([]Record{rec(Income, "5", "a", 2024, 1, 1), rec(Expense, "2", "b", 2024, 1, 1)})
	if s := SummarizeEntries(entries); !s.Balance.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected balance 3, got %s", s.Balance)
	}
}
