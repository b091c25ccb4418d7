// Package store defines the transaction store seen by the rest of the
// application and the fan-out used to push snapshots to subscribers.
package store

import (
	"context"

	"finanzas/internal/core"
)

// Ports for the transaction store.
type (
	// Subscriber delivers the full transaction set of an owner each time it
	// changes. The first value is the current set. The channel is closed when
	// ctx is done. Slow readers only ever see the newest snapshot.
	Subscriber interface {
		Subscribe(ctx context.Context, ownerID string) (<-chan []core.Transaction, error)
	}

	// Writer is the write side of the store.
	Writer interface {
		// Create stores a new record and returns its assigned id.
		Create(ctx context.Context, t core.Transaction) (string, error)
		// Update replaces the record id with t. t.OwnerID must own the record.
		Update(ctx context.Context, id string, t core.Transaction) error
		Delete(ctx context.Context, ownerID, id string) error
	}

	// Reader lists an owner's current records.
	Reader interface {
		List(ctx context.Context, ownerID string) ([]core.Transaction, error)
	}

	// Store is everything the application needs from a transaction store.
	Store interface {
		Subscriber
		Writer
		Reader
	}

	// Repository is the persistence port behind a Store. Implementations
	// return records in creation order and core.ErrNotFound for unknown ids
	// or ids owned by someone else.
	Repository interface {
		Insert(ctx context.Context, t core.Transaction) error
		Replace(ctx context.Context, t core.Transaction) error
		Remove(ctx context.Context, ownerID, id string) error
		Get(ctx context.Context, ownerID, id string) (core.Transaction, error)
		ListByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error)
		ListOwners(ctx context.Context) ([]string, error)
	}
)
