package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name   string
		amount Cents
		pct    string
		want   Cents
	}{
		{name: "ten percent", amount: 10000, pct: "10", want: 1000},
		{name: "rounds half up", amount: 105, pct: "50", want: 53},
		{name: "fractional percent", amount: 9999, pct: "12.5", want: 1250},
		{name: "zero amount", amount: 0, pct: "10", want: 0},
		{name: "zero percent", amount: 10000, pct: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, err := decimal.NewFromString(tt.pct)
			if err != nil {
				t.Fatalf("bad pct fixture: %v", err)
			}
			if got := PercentOf(tt.amount, pct); got != tt.want {
				t.Fatalf("PercentOf(%d, %s) = %d, want %d", tt.amount, tt.pct, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1500, 1000); got != 1000 {
		t.Fatalf("expected clamp to max, got %d", got)
	}
	if got := Clamp(500, 1000); got != 500 {
		t.Fatalf("expected amount unchanged, got %d", got)
	}
	if got := Clamp(-5, 1000); got != 0 {
		t.Fatalf("expected negative floored to zero, got %d", got)
	}
	if got := Clamp(1500, 0); got != 1500 {
		t.Fatalf("expected no upper bound when max is zero, got %d", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount Cents
		want   string
	}{
		{amount: 1234, want: "12.34"},
		{amount: 100, want: "1.00"},
		{amount: 5, want: "0.05"},
		{amount: 0, want: "0.00"},
		{amount: 999999, want: "9999.99"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.amount); got != tt.want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestParseAmountRoundTrip(t *testing.T) {
	got, err := ParseAmount("12.34")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1234 {
		t.Fatalf("ParseAmount = %d, want 1234", got)
	}

	if _, err := ParseAmount("not-a-number"); err == nil {
		t.Fatal("expected parse error")
	}
}
