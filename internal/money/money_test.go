package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Assertions compare via StringFixed or Equal, never String: shopspring
// normalizes integral results, so 45.00 can print as "45".

func TestSafeDivHalfUp(t *testing.T) {
	got := SafeDiv(dec("100.00"), dec("3"))
	if got.StringFixed(2) != "33.33" {
		t.Fatalf("expected 33.33 got %s", got)
	}
	got = SafeDiv(dec("0.05"), dec("2"))
	if got.StringFixed(2) != "0.03" {
		t.Fatalf("expected half-up 0.03 got %s", got)
	}
}

func TestSafeDivZeroDivisor(t *testing.T) {
	if got := SafeDiv(dec("42.00"), decimal.Zero); !got.IsZero() {
		t.Fatalf("expected zero for zero divisor, got %s", got)
	}
	if got := SafeDivRatio(dec("42.00"), decimal.Zero); !got.IsZero() {
		t.Fatalf("expected zero for zero divisor, got %s", got)
	}
}

func TestPercent(t *testing.T) {
	// 600 / 400 at scale 4, then x100 = 150.00%
	got := Percent(dec("600.00"), dec("400.00"))
	if !got.Equal(dec("150")) {
		t.Fatalf("expected 150 got %s", got)
	}
	if got := Percent(dec("600.00"), decimal.Zero); !got.IsZero() {
		t.Fatalf("expected zero percent for zero whole, got %s", got)
	}
}

func TestPercentOf(t *testing.T) {
	// The value is what matters; its printed form is presentation's concern.
	got := PercentOf(dec("300.00"), dec("15.00"))
	if !got.Equal(dec("45.00")) {
		t.Fatalf("expected 45.00 got %s", got)
	}
	got = PercentOf(dec("99.99"), dec("3.00"))
	if got.StringFixed(2) != "3.00" {
		t.Fatalf("expected 3.00 got %s", got)
	}
}

func TestRoundMoneyTies(t *testing.T) {
	if got := RoundMoney(dec("1.005")); got.StringFixed(2) != "1.01" {
		t.Fatalf("expected 1.01 got %s", got)
	}
	if got := RoundMoney(dec("-1.005")); got.StringFixed(2) != "-1.01" {
		t.Fatalf("expected -1.01 got %s", got)
	}
}
