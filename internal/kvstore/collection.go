package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Collection is a typed view over one document in a Store. All mutation goes
// through Update, which holds the collection's lock across the read-modify-
// write cycle so two overlapping updates cannot interleave.
type Collection[T Record] struct {
	store Store
	name  string
	mu    sync.Mutex
}

func NewCollection[T Record](store Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// Name returns the collection key this Collection reads and writes.
func (c *Collection[T]) Name() string { return c.name }

// All decodes the full collection. A collection that has never been written
// decodes as an empty slice.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	data, err := c.store.Get(ctx, c.name)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("kvstore: decoding %s: %w", c.name, err)
	}
	return records, nil
}

// Replace writes the given records as the new collection document.
func (c *Collection[T]) Replace(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("kvstore: encoding %s: %w", c.name, err)
	}
	return c.store.Put(ctx, c.name, data)
}

// Update runs fn against a fresh read of the collection and writes back what
// fn returns. The collection lock is held for the whole cycle. fn returning
// an error aborts the write and the error is returned unchanged, so services
// can surface typed errors from inside an update.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.All(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return c.Replace(ctx, updated)
}

// NextID reads the collection and returns max(id)+1, or 1 when empty.
// Inside an Update closure use the package-level NextID on the slice already
// in hand instead of re-reading.
func (c *Collection[T]) NextID(ctx context.Context) (int64, error) {
	records, err := c.All(ctx)
	if err != nil {
		return 0, err
	}
	return NextID(records), nil
}
