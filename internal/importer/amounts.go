package importer

import (
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// ParsedAmount is the normalized magnitude and inferred direction of a raw
// amount cell. The magnitude is never negative: sign travels only through
// Type.
type ParsedAmount struct {
	Amount core.Money
	Type   core.TransactionType
}

// ParseAmount normalizes a raw amount cell. Currency symbols and thousands
// separators are stripped, a parenthesized value is negative, and the name of
// the mapped column overrides the sign: "debit" columns force expense,
// "credit" columns force income. Otherwise the arithmetic sign decides.
//
// Unparseable values fail closed to a zero-amount expense so the row surfaces
// for review instead of blocking the whole import.
func ParseAmount(raw any, columnName string) ParsedAmount {
	var (
		cents int64
		neg   bool
		ok    bool
	)

	if f, isNum := numericCell(raw); isNum {
		neg = f < 0
		cents = floatToCents(f)
		ok = true
	} else {
		s := strings.TrimSpace(cellString(raw))
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			neg = true
			s = strings.Trim(s, "()")
		}
		s = stripCurrency(s)
		if parsed, err := core.ParseSignedDecimalToCents(s); err == nil {
			if parsed < 0 {
				neg = true
			}
			cents = parsed
			ok = true
		}
	}

	if !ok {
		return ParsedAmount{Amount: core.Money{Cents: 0}, Type: core.TypeExpense}
	}

	lower := strings.ToLower(columnName)
	if strings.Contains(lower, "debit") {
		neg = true
	} else if strings.Contains(lower, "credit") {
		neg = false
	}

	if cents < 0 {
		cents = -cents
	}
	t := core.TypeIncome
	if neg {
		t = core.TypeExpense
	}
	return ParsedAmount{Amount: core.Money{Cents: cents}, Type: t}
}

// stripCurrency drops currency symbols, thousands separators and spaces,
// leaving a plain dot-decimal number.
func stripCurrency(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ':
			return -1
		}
		return r
	}, s)
}

func floatToCents(f float64) int64 {
	cents, err := core.ParseSignedDecimalToCents(strconv.FormatFloat(f, 'f', -1, 64))
	if err != nil {
		return 0
	}
	return cents
}
