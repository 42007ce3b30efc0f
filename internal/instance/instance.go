package instance

import (
	"encoding/json"
	"maps"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/angeloszaimis/healthwatch/internal/apperror"
)

// Instance is one running deployment of a monitored service.
type Instance struct {
	id           string
	uri          string
	endpoints    map[string]string
	healthStatus Status
}

// From builds a new instance from service discovery metadata. The health
// status starts as UNKNOWN.
func From(source ServiceInstance) (*Instance, error) {
	endpoints, err := endpointsFrom(source.Metadata)
	if err != nil {
		return nil, apperror.NewBadParameterError("invalid endpoint metadata", err)
	}

	inst := &Instance{
		id:           source.ID,
		uri:          source.URI,
		endpoints:    endpoints,
		healthStatus: StatusUnknown,
	}
	if err := inst.validate(); err != nil {
		return nil, apperror.NewBadParameterError("invalid service instance", err)
	}

	return inst, nil
}

// Restore rebuilds an instance from persisted state.
func Restore(id, uri string, endpoints map[string]string, status Status) *Instance {
	if endpoints == nil {
		endpoints = map[string]string{}
	}
	if status == "" {
		status = StatusUnknown
	}
	return &Instance{
		id:           id,
		uri:          uri,
		endpoints:    maps.Clone(endpoints),
		healthStatus: status,
	}
}

func (i *Instance) ID() string {
	return i.id
}

func (i *Instance) URI() string {
	return i.uri
}

// Endpoints returns a copy of the advertised endpoint map.
func (i *Instance) Endpoints() map[string]string {
	return maps.Clone(i.endpoints)
}

// Endpoint returns the URI advertised under name.
func (i *Instance) Endpoint(name string) (string, bool) {
	uri, ok := i.endpoints[name]
	return uri, ok && uri != ""
}

// HealthEndpoint returns the health-check URI, if the instance has one.
func (i *Instance) HealthEndpoint() (string, bool) {
	return i.Endpoint(HealthEndpoint)
}

func (i *Instance) HealthStatus() Status {
	return i.healthStatus
}

// UpdateHealthStatus replaces the health status in memory only. Persisting
// the change is up to the caller.
func (i *Instance) UpdateHealthStatus(status Status) {
	i.healthStatus = status
}

// Equal reports whether both instances have the same id.
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.id == other.id
}

// Clone returns a deep copy.
func (i *Instance) Clone() *Instance {
	return Restore(i.id, i.uri, i.endpoints, i.healthStatus)
}

func (i *Instance) validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.id, validation.Required),
		validation.Field(&i.endpoints, validation.Each(validation.By(validateAbsoluteURL))),
	)
}

func validateAbsoluteURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

// Record is the flat, serialisable form of an instance.
type Record struct {
	ID           string            `json:"id"`
	URI          string            `json:"uri"`
	Endpoints    map[string]string `json:"endpoints"`
	HealthStatus Status            `json:"health_status"`
}

func (i *Instance) Record() Record {
	return Record{
		ID:           i.id,
		URI:          i.uri,
		Endpoints:    maps.Clone(i.endpoints),
		HealthStatus: i.healthStatus,
	}
}

func FromRecord(r Record) *Instance {
	return Restore(r.ID, r.URI, r.Endpoints, r.HealthStatus)
}

func (i *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Record())
}

func (i *Instance) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*i = *FromRecord(r)
	return nil
}
