package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPrice = 0
	DefaultQty   = 1
)

// NormalizePrice maps NaN, infinities and negative prices to DefaultPrice.
func NormalizePrice(price float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return DefaultPrice
	}
	return price
}

// NormalizeQty maps non-positive quantities to DefaultQty.
func NormalizeQty(qty int) int {
	if qty < 1 {
		return DefaultQty
	}
	return qty
}

// ParsePrice coerces a raw attribute value into a price. Empty or
// non-numeric input yields DefaultPrice.
func ParsePrice(raw string) float64 {
	value, ok := parseNumber(raw)
	if !ok {
		return DefaultPrice
	}
	return NormalizePrice(value)
}

// ParseQty coerces a raw attribute value into a quantity. Fractions are
// truncated; empty, non-numeric or non-positive input yields DefaultQty.
func ParseQty(raw string) int {
	value, ok := parseNumber(raw)
	if !ok || value < 1 || value > math.MaxInt32 {
		return DefaultQty
	}
	return NormalizeQty(int(value))
}

// CoerceNumber converts a decoded JSON value (number or string) into a float.
func CoerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int:
		return float64(n), true
	case string:
		return parseNumber(n)
	default:
		return 0, false
	}
}

// CoercePrice converts a decoded JSON value into a price.
func CoercePrice(v any) float64 {
	value, ok := CoerceNumber(v)
	if !ok {
		return DefaultPrice
	}
	return NormalizePrice(value)
}

// CoerceQty converts a decoded JSON value into a quantity.
func CoerceQty(v any) int {
	value, ok := CoerceNumber(v)
	if !ok || value < 1 || value > math.MaxInt32 {
		return DefaultQty
	}
	return int(value)
}

func parseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}
