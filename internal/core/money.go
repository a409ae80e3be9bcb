// Package core provides the ledger domain types and amount parsing.
//
// This file contains the parser that turns free chat text such as "250",
// "+1000" or "₹ 99.50" into a transaction kind and a positive amount.
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// MaxAmount is the largest magnitude a single transaction may carry.
var MaxAmount = decimal.New(1, 12)

// AmountHints are the example inputs shown to the user after a failed parse.
var AmountHints = []string{"250", "+1000", "-99.50"}

// currencyMarkers are removed before parsing. Longer markers come first so
// that "rs." is stripped before "rs".
var currencyMarkers = []string{"₹", "$", "€", "£", "inr", "rs.", "rs"}

// ParsedAmount is the result of a successful ParseAmount call.
type ParsedAmount struct {
	Kind   Kind
	Amount float64
	Raw    string
}

// AmountError reports input that could not be read as an amount.
type AmountError struct {
	Input string
	Hints []string
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %q (try %s)", e.Input, strings.Join(e.Hints, ", "))
}

func (e *AmountError) Unwrap() error {
	return ErrInvalidAmount
}

// ParseAmount classifies raw text as income or expense and parses its magnitude.
//
// Whitespace and currency markers are stripped first. A leading "+" marks
// income, a leading "-" or no sign marks expense. The magnitude must be a
// plain positive decimal number.
//
// Examples:
//
//	ParseAmount("250")     -> expense 250
//	ParseAmount("+1000")   -> income 1000
//	ParseAmount("-rs 45")  -> expense 45
//	ParseAmount("abc")     -> *AmountError
func ParseAmount(raw string) (ParsedAmount, error) {
	s := normalizeAmountText(raw)
	if s == "" {
		return ParsedAmount{}, newAmountError(raw)
	}

	kind := Expense
	switch s[0] {
	case '+':
		kind = Income
		s = s[1:]
	case '-':
		s = s[1:]
	}

	if s == "" || !isPlainNumber(s) {
		return ParsedAmount{}, newAmountError(raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() || d.GreaterThan(MaxAmount) {
		return ParsedAmount{}, newAmountError(raw)
	}

	amount := d.InexactFloat64()
	if ValidateAmount(amount) != nil {
		return ParsedAmount{}, newAmountError(raw)
	}
	return ParsedAmount{
		Kind:   kind,
		Amount: amount,
		Raw:    raw,
	}, nil
}

// ValidateAmount accepts finite amounts in (0, MaxAmount].
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 || amount > MaxAmount.InexactFloat64() {
		return ErrInvalidAmount
	}
	return nil
}

func newAmountError(raw string) error {
	return &AmountError{Input: strings.TrimSpace(raw), Hints: AmountHints}
}

func normalizeAmountText(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	s = strings.ToLower(s)
	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	return s
}

// isPlainNumber accepts digits with at most one decimal point.
func isPlainNumber(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
