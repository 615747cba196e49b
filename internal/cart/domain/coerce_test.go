package domain_test

import (
	"testing"

	"github.com/dejobratic/cartwidget/internal/cart/domain"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1200", 1200},
		{" 99.5 ", 99.5},
		{"", 0},
		{"abc", 0},
		{"-10", 0},
		{"NaN", 0},
		{"Inf", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := domain.ParsePrice(tt.raw); got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseQty(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"2", 2},
		{"3.9", 3},
		{"", 1},
		{"x", 1},
		{"0", 1},
		{"-4", 1},
		{"0.5", 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := domain.ParseQty(tt.raw); got != tt.want {
				t.Errorf("ParseQty(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCoerceJSONValues(t *testing.T) {
	tests := []struct {
		name      string
		price     any
		qty       any
		wantPrice float64
		wantQty   int
	}{
		{"numbers", float64(450), float64(2), 450, 2},
		{"strings", "450", "2", 450, 2},
		{"missing", nil, nil, 0, 1},
		{"booleans", true, false, 0, 1},
		{"non-numeric strings", "cheap", "many", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.CoercePrice(tt.price); got != tt.wantPrice {
				t.Errorf("CoercePrice(%v) = %v, want %v", tt.price, got, tt.wantPrice)
			}
			if got := domain.CoerceQty(tt.qty); got != tt.wantQty {
				t.Errorf("CoerceQty(%v) = %d, want %d", tt.qty, got, tt.wantQty)
			}
		})
	}
}
