package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/dejobratic/cartwidget/internal/cart/domain"
)

func TestCartAdd(t *testing.T) {
	t.Run("merges same name and price into one entry", func(t *testing.T) {
		var c domain.Cart
		c.Add("Shirt", 500, 1)
		item, merged := c.Add("Shirt", 500, 1)

		if !merged {
			t.Error("expected second add to merge")
		}
		if len(c) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(c))
		}
		if c[0].Qty != 2 {
			t.Errorf("expected qty 2, got %d", c[0].Qty)
		}
		if item.Qty != 2 {
			t.Errorf("expected returned item qty 2, got %d", item.Qty)
		}
	})

	t.Run("keeps different prices for same name distinct", func(t *testing.T) {
		var c domain.Cart
		c.Add("Shirt", 500, 1)
		c.Add("Shirt", 450, 1)

		if len(c) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(c))
		}
		if c[0].Price != 500 || c[1].Price != 450 {
			t.Errorf("expected prices [500 450] in insertion order, got [%v %v]", c[0].Price, c[1].Price)
		}
	})

	t.Run("defaults non-positive quantity to one", func(t *testing.T) {
		var c domain.Cart
		c.Add("Hat", 10, 0)
		c.Add("Cap", 10, -3)

		for _, item := range c {
			if item.Qty != 1 {
				t.Errorf("expected qty 1 for %s, got %d", item.Name, item.Qty)
			}
		}
	})

	t.Run("coerces invalid price to zero", func(t *testing.T) {
		var c domain.Cart
		c.Add("Sock", math.NaN(), 1)
		c.Add("Sock", -5, 1)

		if len(c) != 1 {
			t.Fatalf("expected NaN and negative price to merge at 0, got %d entries", len(c))
		}
		if c[0].Price != 0 || c[0].Qty != 2 {
			t.Errorf("expected {price 0 qty 2}, got %+v", c[0])
		}
	})
}

func TestCartRemove(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		wantOK    bool
		wantNames []string
	}{
		{"removes first", 0, true, []string{"b", "c"}},
		{"removes middle", 1, true, []string{"a", "c"}},
		{"removes last", 2, true, []string{"a", "b"}},
		{"ignores negative index", -1, false, []string{"a", "b", "c"}},
		{"ignores index equal to length", 3, false, []string{"a", "b", "c"}},
		{"ignores large index", 99, false, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.Cart{{Name: "a", Price: 1, Qty: 1}, {Name: "b", Price: 2, Qty: 1}, {Name: "c", Price: 3, Qty: 1}}
			original := c.Clone()

			_, ok := c.Remove(tt.index)
			if ok != tt.wantOK {
				t.Errorf("Remove(%d) ok = %v, want %v", tt.index, ok, tt.wantOK)
			}

			if len(c) != len(tt.wantNames) {
				t.Fatalf("expected %d entries, got %d", len(tt.wantNames), len(c))
			}
			for i, name := range tt.wantNames {
				if c[i].Name != name {
					t.Errorf("entry %d: expected %s, got %s", i, name, c[i].Name)
				}
			}

			if original[0].Name != "a" || len(original) != 3 {
				t.Error("clone was modified by Remove")
			}
		})
	}
}

func TestCartTotals(t *testing.T) {
	c := domain.Cart{
		{Name: "Shoes", Price: 1200, Qty: 2},
		{Name: "Belt", Price: 250.5, Qty: 3},
	}

	if got, want := c.Total(), 1200*2+250.5*3; got != want {
		t.Errorf("Total() = %v, want %v", got, want)
	}
	if got := c.ItemCount(); got != 5 {
		t.Errorf("ItemCount() = %d, want 5", got)
	}

	c.Clear()
	if c.Total() != 0 || c.ItemCount() != 0 || len(c) != 0 {
		t.Errorf("expected empty cart after Clear, got %+v", c)
	}
}

func TestCartNormalize(t *testing.T) {
	c := domain.Cart{
		{Name: "ok", Price: 10, Qty: 2},
		{Name: "  ", Price: 10, Qty: 1},
		{Name: "zero-qty", Price: -1, Qty: 0},
	}

	got := c.Normalize()

	if len(got) != 2 {
		t.Fatalf("expected blank name dropped, got %d entries", len(got))
	}
	if got[1].Price != 0 || got[1].Qty != 1 {
		t.Errorf("expected repaired entry {price 0 qty 1}, got %+v", got[1])
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := domain.Cart{
		{Name: "Shoes", Price: 1200, Qty: 3},
		{Name: "Shirt", Price: 500, Qty: 1},
		{Name: "Shirt", Price: 450, Qty: 2},
	}

	payload, err := domain.EncodeSnapshot(c)
	if err != nil {
		t.Fatalf("EncodeSnapshot() failed: %v", err)
	}

	decoded, err := domain.DecodeSnapshot(payload)
	if err != nil {
		t.Fatalf("DecodeSnapshot() failed: %v", err)
	}

	if len(decoded) != len(c) {
		t.Fatalf("expected %d entries, got %d", len(c), len(decoded))
	}
	for i := range c {
		if decoded[i] != c[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, c[i], decoded[i])
		}
	}
}

func TestEncodeEmptySnapshot(t *testing.T) {
	payload, err := domain.EncodeSnapshot(nil)
	if err != nil {
		t.Fatalf("EncodeSnapshot() failed: %v", err)
	}
	if payload != "[]" {
		t.Errorf("expected [], got %q", payload)
	}
}

func TestDecodeSnapshot(t *testing.T) {
	t.Run("rejects malformed payload", func(t *testing.T) {
		c, err := domain.DecodeSnapshot("not-json")
		if !errors.Is(err, domain.ErrMalformedSnapshot) {
			t.Errorf("expected ErrMalformedSnapshot, got %v", err)
		}
		if len(c) != 0 {
			t.Errorf("expected empty cart, got %+v", c)
		}
	})

	t.Run("treats null as empty", func(t *testing.T) {
		c, err := domain.DecodeSnapshot("null")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c == nil || len(c) != 0 {
			t.Errorf("expected non-nil empty cart, got %#v", c)
		}
	})

	t.Run("coerces string numbers and missing quantity", func(t *testing.T) {
		c, err := domain.DecodeSnapshot(`[{"name":"Cap","price":"199","qty":"2"},{"name":"Bag","price":99}]`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := domain.Cart{{Name: "Cap", Price: 199, Qty: 2}, {Name: "Bag", Price: 99, Qty: 1}}
		for i := range want {
			if c[i] != want[i] {
				t.Errorf("entry %d: expected %+v, got %+v", i, want[i], c[i])
			}
		}
	})
}
