package store

import (
	"context"

	"github.com/angeloszaimis/healthwatch/internal/instance"
)

// Store is the instance repository.
type Store interface {
	// GetByID returns the instance with the given id, or an
	// entity_not_found error.
	GetByID(ctx context.Context, id string) (*instance.Instance, error)

	// GetAll returns a point-in-time snapshot of every instance, in no
	// particular order. An empty store is not an error.
	GetAll(ctx context.Context) ([]*instance.Instance, error)

	// Save inserts or replaces the instance with the same id and returns
	// the stored value.
	Save(ctx context.Context, inst *instance.Instance) (*instance.Instance, error)
}
