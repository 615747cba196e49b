package domain

import "strings"

// LineItem is one entry in the cart. Name and price together identify the entry for merging.
type LineItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// Subtotal returns price times quantity.
func (i LineItem) Subtotal() float64 {
	return i.Price * float64(i.Qty)
}

// Matches reports whether the item shares the (name, price) merge identity.
func (i LineItem) Matches(name string, price float64) bool {
	return i.Name == name && i.Price == price
}

// Cart is an ordered sequence of line items. Insertion order is preserved.
type Cart []LineItem

// Add merges the item into an existing entry with the same name and price,
// or appends it. It returns the resulting entry and whether a merge happened.
func (c *Cart) Add(name string, price float64, qty int) (LineItem, bool) {
	price = NormalizePrice(price)
	qty = NormalizeQty(qty)

	for i := range *c {
		if (*c)[i].Matches(name, price) {
			(*c)[i].Qty += qty
			return (*c)[i], true
		}
	}

	item := LineItem{Name: name, Price: price, Qty: qty}
	*c = append(*c, item)
	return item, false
}

// Remove deletes the entry at index. Out-of-range indexes leave the cart unchanged.
func (c *Cart) Remove(index int) (LineItem, bool) {
	if index < 0 || index >= len(*c) {
		return LineItem{}, false
	}

	removed := (*c)[index]
	*c = append((*c)[:index:index], (*c)[index+1:]...)
	return removed, true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	*c = Cart{}
}

// Total is the sum of price times quantity over all entries.
func (c Cart) Total() float64 {
	var sum float64
	for _, item := range c {
		sum += item.Subtotal()
	}
	return sum
}

// ItemCount is the sum of all quantities.
func (c Cart) ItemCount() int {
	var n int
	for _, item := range c {
		n += item.Qty
	}
	return n
}

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Normalize repairs entries read from an untrusted snapshot: blank names are
// dropped, prices and quantities are clamped into their valid ranges.
func (c Cart) Normalize() Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		item.Price = NormalizePrice(item.Price)
		item.Qty = NormalizeQty(item.Qty)
		out = append(out, item)
	}
	return out
}
