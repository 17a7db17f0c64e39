package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCentsRoundTrip(t *testing.T) {
	cases := []int64{0, 1, 99, 100, 193597, -4550}
	for _, cents := range cases {
		if got := ToCents(FromCents(cents)); got != cents {
			t.Fatalf("round trip %d: got %d", cents, got)
		}
	}
}

func TestToCentsRoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"175.997", 17600},
		{"175.994", 17599},
		{"0.005", 1},
		{"-0.005", -1},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got := ToCents(amount); got != tc.want {
			t.Fatalf("ToCents(%s): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestFormatAlwaysTwoPlaces(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{193597, "1935.97"},
	}
	for _, tc := range cases {
		if got := Format(tc.cents); got != tc.want {
			t.Fatalf("Format(%d): expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestFormatWithSymbol(t *testing.T) {
	if got := FormatWithSymbol(45000, "Rs."); got != "Rs.450.00" {
		t.Fatalf("unexpected formatted amount: %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Rs.70,000", "70000"},
		{"Rs.8,500.50", "8500.5"},
		{"$12.99", "12.99"},
		{"450", "450"},
		{"-12.50", "-12.5"},
		{"Rs.-99", "-99"},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseAmount(%q): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestParseAmountSymbolDotIsNotDecimal(t *testing.T) {
	got, err := ParseAmount("Rs.70,000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := decimal.NewFromInt(70000)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseAmountRejectsNonNumeric(t *testing.T) {
	for _, in := range []string{"", "free", "Rs."} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
