package core

import "testing"

func TestColorLookups(t *testing.T) {
	for _, c := range Categories() {
		if CategoryColor(c) == DefaultColor {
			t.Fatalf("category %q has no dedicated color", c)
		}
	}
	for _, ty := range SavingsTypes() {
		if SavingsTypeColor(ty) == DefaultColor {
			t.Fatalf("savings type %q has no dedicated color", ty)
		}
	}
	if got := CategoryColor("Unmapped"); got != DefaultColor {
		t.Fatalf("unknown category color = %q, want default", got)
	}
	if got := GroupColor("nonsense"); got != DefaultColor {
		t.Fatalf("unknown group color = %q, want default", got)
	}
	if GroupColor(string(CatFood)) != CategoryColor(CatFood) {
		t.Fatal("group color should resolve category keys")
	}
	if GroupColor(string(TypeGoal)) != SavingsTypeColor(TypeGoal) {
		t.Fatal("group color should resolve savings type keys")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   float64
		currency Currency
		want     string
	}{
		{1250000.5, CurrencyUGX, "UGX 1,250,000.50"},
		{0, CurrencyUSD, "USD 0.00"},
		{-42.1, CurrencyEUR, "-EUR 42.10"},
		{999, CurrencyUGX, "UGX 999.00"},
		{1000, CurrencyUGX, "UGX 1,000.00"},
	}
	for i, tc := range cases {
		if got := FormatAmount(tc.amount, tc.currency); got != tc.want {
			t.Fatalf("case %d: FormatAmount(%v, %s) = %q, want %q", i, tc.amount, tc.currency, got, tc.want)
		}
	}
}
