package instance

import (
	"fmt"

	"github.com/spf13/cast"
)

// EndpointsMetadataKey is the metadata key under which a service instance
// advertises its endpoint map.
const EndpointsMetadataKey = "endpoints"

// HealthEndpoint is the logical name of the health-check endpoint.
const HealthEndpoint = "health"

// ServiceInstance is what service discovery knows about a running instance.
type ServiceInstance struct {
	ID       string         `mapstructure:"id" json:"id"`
	Name     string         `mapstructure:"name" json:"name"`
	URI      string         `mapstructure:"uri" json:"uri"`
	Metadata map[string]any `mapstructure:"metadata" json:"metadata"`
}

// endpointsFrom reads the endpoint map from the source metadata. The value
// may be a string map, a generic map or a JSON object string.
func endpointsFrom(metadata map[string]any) (map[string]string, error) {
	raw, ok := metadata[EndpointsMetadataKey]
	if !ok || raw == nil {
		return map[string]string{}, nil
	}

	endpoints, err := cast.ToStringMapStringE(raw)
	if err != nil {
		return nil, fmt.Errorf("metadata %q: %w", EndpointsMetadataKey, err)
	}

	return endpoints, nil
}
