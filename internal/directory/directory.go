package directory

import (
	"context"
	"fmt"

	"github.com/angeloszaimis/healthwatch/internal/apperror"
	"github.com/angeloszaimis/healthwatch/internal/instance"
	"github.com/angeloszaimis/healthwatch/internal/store"
)

type Directory struct {
	store store.Store
}

func New(s store.Store) *Directory {
	return &Directory{store: s}
}

// FindForSource looks the source up by id. It never creates an instance.
func (d *Directory) FindForSource(ctx context.Context, source instance.ServiceInstance) (*instance.Instance, bool, error) {
	inst, err := d.store.GetByID(ctx, source.ID)
	if apperror.IsEntityNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find instance %s: %w", source.ID, err)
	}

	return inst, true, nil
}

// CreateFromSource builds an instance from the source and saves it. Callers
// decide whether creation is warranted; no deduplication happens here.
func (d *Directory) CreateFromSource(ctx context.Context, source instance.ServiceInstance) (*instance.Instance, error) {
	inst, err := instance.From(source)
	if err != nil {
		return nil, err
	}

	saved, err := d.store.Save(ctx, inst)
	if err != nil {
		return nil, fmt.Errorf("create instance %s: %w", source.ID, err)
	}

	return saved, nil
}

func (d *Directory) ListAll(ctx context.Context) ([]*instance.Instance, error) {
	all, err := d.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	return all, nil
}

func (d *Directory) Get(ctx context.Context, id string) (*instance.Instance, error) {
	inst, err := d.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get instance %s: %w", id, err)
	}
	return inst, nil
}

// UpdateHealth loads the instance, replaces its status and saves it. An
// unknown id fails with entity_not_found.
func (d *Directory) UpdateHealth(ctx context.Context, id string, status instance.Status) error {
	inst, err := d.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("update health of %s: %w", id, err)
	}

	inst.UpdateHealthStatus(status)

	if _, err := d.store.Save(ctx, inst); err != nil {
		return fmt.Errorf("update health of %s: %w", id, err)
	}

	return nil
}
