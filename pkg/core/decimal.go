package core

import "github.com/nikolaydubina/fpdecimal"

// ParseDecimal parses a decimal string into the fixed-point type used
// throughout the matching core
func ParseDecimal(s string) (fpdecimal.Decimal, error) {
	return fpdecimal.FromString(s)
}

// MustParseDecimal parses a decimal string and panics on failure.
// Intended for constants and tests.
func MustParseDecimal(s string) fpdecimal.Decimal {
	d, err := fpdecimal.FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// SideFromString parses "BUY" or "SELL" into a Side
func SideFromString(s string) (Side, bool) {
	switch s {
	case "BUY":
		return Buy, true
	case "SELL":
		return Sell, true
	default:
		return 0, false
	}
}
