package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/healthwatch/internal/instance"
)

type Type string

const (
	TypeInstanceCreated       Type = "instance_created"
	TypeHealthRetrieved       Type = "health_retrieved"
	TypeHealthRetrievalFailed Type = "health_retrieval_failed"
)

type Event interface {
	Type() Type
	ID() string
	OccurredAt() time.Time
}

// Meta identifies one occurrence of an event.
type Meta struct {
	EventID string
	Time    time.Time
}

func newMeta() Meta {
	return Meta{
		EventID: uuid.NewString(),
		Time:    time.Now(),
	}
}

func (m Meta) ID() string {
	return m.EventID
}

func (m Meta) OccurredAt() time.Time {
	return m.Time
}

// InstanceCreated is published once a new instance has been saved.
type InstanceCreated struct {
	Meta
	Instance *instance.Instance
}

func NewInstanceCreated(inst *instance.Instance) InstanceCreated {
	return InstanceCreated{Meta: newMeta(), Instance: inst.Clone()}
}

func (InstanceCreated) Type() Type { return TypeInstanceCreated }

// HealthRetrieved carries the payload fetched from an instance's health endpoint.
type HealthRetrieved struct {
	Meta
	InstanceID string
	Health     instance.Health
}

func NewHealthRetrieved(instanceID string, health instance.Health) HealthRetrieved {
	return HealthRetrieved{Meta: newMeta(), InstanceID: instanceID, Health: health}
}

func (HealthRetrieved) Type() Type { return TypeHealthRetrieved }

// HealthRetrievalFailed reports a health fetch that did not produce a valid payload.
type HealthRetrievalFailed struct {
	Meta
	InstanceID string
	Endpoint   string
	Cause      error
}

func NewHealthRetrievalFailed(instanceID, endpoint string, cause error) HealthRetrievalFailed {
	return HealthRetrievalFailed{Meta: newMeta(), InstanceID: instanceID, Endpoint: endpoint, Cause: cause}
}

func (HealthRetrievalFailed) Type() Type { return TypeHealthRetrievalFailed }
