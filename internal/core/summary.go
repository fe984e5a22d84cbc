package core

import "github.com/shopspring/decimal"

// Summary holds the income/expense totals of a record set.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
}

// Report is what the summary view needs: totals plus the matching entries.
type Report struct {
	Range   Range
	Summary Summary
	Entries []Entry
}

// Summarize sums amounts by type. No rounding is applied; an empty input
// yields zero totals.
func Summarize(records []Record) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, r := range records {
		switch r.Type {
		case Income:
			income = income.Add(r.Amount)
		case Expense:
			expense = expense.Add(r.Amount)
		}
	}
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}
}

// SummarizeEntries is Summarize over indexed entries.
func SummarizeEntries(entries []Entry) Summary {
	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = e.Record
	}
	return Summarize(records)
}

// Add combines the totals of two disjoint record sets.
func (s Summary) Add(o Summary) Summary {
	income := s.TotalIncome.Add(o.TotalIncome)
	expense := s.TotalExpense.Add(o.TotalExpense)
	return Summary{TotalIncome: income, TotalExpense: expense, Balance: income.Sub(expense)}
}

// Equal compares totals numerically.
func (s Summary) Equal(o Summary) bool {
	return s.TotalIncome.Equal(o.TotalIncome) &&
		s.TotalExpense.Equal(o.TotalExpense) &&
		s.Balance.Equal(o.Balance)
}
