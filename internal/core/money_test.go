package core

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)
	cases := []struct {
		in     string
		kind   Kind
		amount float64
		ok     bool
	}{
		{"250", Expense, 250, true},
		{"+1000", Income, 1000, true},
		{"-99.50", Expense, 99.5, true},
		{" 12.34 ", Expense, 12.34, true},
		{"+ 5", Income, 5, true},
		{"₹250", Expense, 250, true},
		{"+Rs 300", Income, 300, true},
		{"RS.45", Expense, 45, true},
		{"$7.25", Expense, 7.25, true},
		{"abc", "", 0, false},
		{"", "", 0, false},
		{"+", "", 0, false},
		{"0", "", 0, false},
		{"+0.00", "", 0, false},
		{"--5", "", 0, false},
		{"+-5", "", 0, false},
		{"1.2.3", "", 0, false},
		{"NaN", "", 0, false},
		{"Inf", "", 0, false},
		{"1e3", "", 0, false},
		{"12abc", "", 0, false},
		{huge, "", 0, false},
		{"+" + huge, "", 0, false},
		{"1000000000000", Expense, 1e12, true},
		{"1000000000000.01", "", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if got.Kind != tc.kind || got.Amount != tc.amount || got.Raw != tc.in {
				t.Fatalf("%q expected %s %.2f, got %+v", tc.in, tc.kind, tc.amount, got)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error, got %+v", tc.in, got)
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestParseAmountErrorCarriesHints(t *testing.T) {
	_, err := ParseAmount("abc")
	var amountErr *AmountError
	if !errors.As(err, &amountErr) {
		t.Fatalf("expected *AmountError, got %T", err)
	}
	if len(amountErr.Hints) != 3 {
		t.Fatalf("expected 3 hints, got %v", amountErr.Hints)
	}
	if amountErr.Input != "abc" {
		t.Fatalf("unexpected input %q", amountErr.Input)
	}
}

func TestParseAmountSignProperty(t *testing.T) {
	for _, s := range []string{"1", "2.5", "10", "999.99", "0.01"} {
		plain, err := ParseAmount(s)
		if err != nil || plain.Kind != Expense {
			t.Fatalf("%q expected expense, got %+v err=%v", s, plain, err)
		}
		plus, err := ParseAmount("+" + s)
		if err != nil || plus.Kind != Income || plus.Amount != plain.Amount {
			t.Fatalf("+%q expected income %.2f, got %+v err=%v", s, plain.Amount, plus, err)
		}
		minus, err := ParseAmount("-" + s)
		if err != nil || minus.Kind != Expense || minus.Amount != plain.Amount {
			t.Fatalf("-%q expected expense %.2f, got %+v err=%v", s, plain.Amount, minus, err)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		ok     bool
	}{
		{"positive", 12.5, true},
		{"max", 1e12, true},
		{"zero", 0, false},
		{"negative", -1, false},
		{"above max", 1e13, false},
		{"+Inf", math.Inf(1), false},
		{"-Inf", math.Inf(-1), false},
		{"NaN", math.NaN(), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAmount(tc.amount)
			if (err == nil) != tc.ok {
				t.Fatalf("ValidateAmount(%v) = %v, want ok=%v", tc.amount, err, tc.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
		})
	}
}
