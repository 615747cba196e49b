package ports

import "context"

// SnapshotStore is the durable key/value slot holding serialized carts.
// Get reports found=false when nothing has been written under key.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (payload string, found bool, err error)
	Put(ctx context.Context, key string, payload string) error
}
