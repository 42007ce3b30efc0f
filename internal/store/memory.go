package store

import (
	"context"
	"sync"

	"github.com/angeloszaimis/healthwatch/internal/apperror"
	"github.com/angeloszaimis/healthwatch/internal/instance"
)

var _ Store = (*Memory)(nil)

type Memory struct {
	mutex     sync.RWMutex
	instances map[string]*instance.Instance
}

func NewMemory() *Memory {
	return &Memory{
		instances: make(map[string]*instance.Instance),
	}
}

func (m *Memory) GetByID(_ context.Context, id string) (*instance.Instance, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	inst, ok := m.instances[id]
	if !ok {
		return nil, apperror.NewEntityNotFoundError("instance not found", nil)
	}

	return inst.Clone(), nil
}

func (m *Memory) GetAll(_ context.Context) ([]*instance.Instance, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	all := make([]*instance.Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		all = append(all, inst.Clone())
	}

	return all, nil
}

func (m *Memory) Save(_ context.Context, inst *instance.Instance) (*instance.Instance, error) {
	if inst == nil || inst.ID() == "" {
		return nil, apperror.NewBadParameterError("instance id is required", nil)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.instances[inst.ID()] = inst.Clone()
	return inst.Clone(), nil
}
