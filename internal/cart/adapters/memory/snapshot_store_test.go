package memory_test

import (
	"context"
	"testing"

	"github.com/dejobratic/cartwidget/internal/cart/adapters/memory"
)

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()

	t.Run("reports missing key", func(t *testing.T) {
		store := memory.NewSnapshotStore()

		payload, found, err := store.Get(ctx, "cart_v1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Errorf("expected key to be missing, got payload %q", payload)
		}
	})

	t.Run("overwrites payload on put", func(t *testing.T) {
		store := memory.NewSnapshotStore()

		if err := store.Put(ctx, "cart_v1", `[{"name":"a","price":1,"qty":1}]`); err != nil {
			t.Fatalf("first put failed: %v", err)
		}
		if err := store.Put(ctx, "cart_v1", "[]"); err != nil {
			t.Fatalf("second put failed: %v", err)
		}

		payload, found, err := store.Get(ctx, "cart_v1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found || payload != "[]" {
			t.Errorf("expected [] to be stored, got %q (found=%v)", payload, found)
		}
	})

	t.Run("keeps keys independent", func(t *testing.T) {
		store := memory.NewSnapshotStore()

		_ = store.Put(ctx, "a", "1")
		_ = store.Put(ctx, "b", "2")

		if payload, _, _ := store.Get(ctx, "a"); payload != "1" {
			t.Errorf("expected 1 under a, got %q", payload)
		}
	})
}
