package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultStorageKey names the persisted slot. The suffix is the snapshot schema tag.
const DefaultStorageKey = "trendhive_cart_v1"

// ErrMalformedSnapshot is returned when a persisted payload cannot be decoded.
var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// EncodeSnapshot serializes the cart as a JSON array. An empty cart encodes as "[]".
func EncodeSnapshot(c Cart) (string, error) {
	if c == nil {
		c = Cart{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cart snapshot: %w", err)
	}
	return string(data), nil
}

// DecodeSnapshot parses a persisted payload and normalizes its entries.
func DecodeSnapshot(payload string) (Cart, error) {
	var items Cart
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return Cart{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	if items == nil {
		return Cart{}, nil
	}
	return items.Normalize(), nil
}

// UnmarshalJSON accepts numbers or numeric strings for price and qty, the
// way a hand-edited or older snapshot may carry them.
func (i *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  any `json:"name"`
		Price any `json:"price"`
		Qty   any `json:"qty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	name, _ := raw.Name.(string)
	*i = LineItem{
		Name:  name,
		Price: CoercePrice(raw.Price),
		Qty:   CoerceQty(raw.Qty),
	}
	return nil
}
