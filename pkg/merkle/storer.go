package merkle

import (
	"context"
	"fmt"
)

// Storer persists transcript nodes.
type Storer interface {
	// Put stores a node and reports whether it was new.
	Put(ctx context.Context, node *Node) (bool, error)

	// Get retrieves a node by its hash.
	Get(ctx context.Context, hash string) (*Node, error)

	// Ancestry returns the path from a node back to its root (node first, root last).
	Ancestry(ctx context.Context, hash string) ([]*Node, error)

	// Leaves returns every node that no other node points to.
	Leaves(ctx context.Context) ([]*Node, error)

	Close() error
}

// ErrNotFound is returned when a hash is not in the store.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("node not found: %s", e.Hash)
}
