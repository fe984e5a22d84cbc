package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.005", true}, // full precision is kept
		{" 2.50 ", "2.5", true},
		{".5", "0.5", true},
		{"7.", "7", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.00", "", false},
		{"1e3", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"0":           "$0.00",
		"950":         "$950.00",
		"1234.5":      "$1,234.50",
		"1234567.891": "$1,234,567.89",
		"-50":         "-$50.00",
	}
	for in, want := range cases {
		if got := FormatCurrency(decimal.RequireFromString(in)); got != want {
			t.Fatalf("%s: expected %q, got %q", in, want, got)
		}
	}
}
