package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/angeloszaimis/healthwatch/config"
	"github.com/angeloszaimis/healthwatch/internal/events"
	"github.com/angeloszaimis/healthwatch/internal/instance"
)

// Directory is the part of the instance directory registration needs.
type Directory interface {
	FindForSource(ctx context.Context, source instance.ServiceInstance) (*instance.Instance, bool, error)
	CreateFromSource(ctx context.Context, source instance.ServiceInstance) (*instance.Instance, error)
}

type Registrar struct {
	directory Directory
	publisher events.Publisher
	logger    *slog.Logger
}

func New(directory Directory, publisher events.Publisher, logger *slog.Logger) *Registrar {
	return &Registrar{
		directory: directory,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "registration")),
	}
}

// Register creates every source the directory does not know yet and
// publishes InstanceCreated for it. Known sources are left untouched. A
// failing source does not stop the others; all failures are returned joined.
func (r *Registrar) Register(ctx context.Context, sources []instance.ServiceInstance) error {
	var errs []error
	for _, source := range sources {
		if err := r.register(ctx, source); err != nil {
			r.logger.Error("Could not register service instance",
				slog.String("instance", source.ID),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Registrar) register(ctx context.Context, source instance.ServiceInstance) error {
	_, found, err := r.directory.FindForSource(ctx, source)
	if err != nil {
		return err
	}
	if found {
		r.logger.Debug("Service instance already registered", slog.String("instance", source.ID))
		return nil
	}

	created, err := r.directory.CreateFromSource(ctx, source)
	if err != nil {
		return fmt.Errorf("register %s: %w", source.ID, err)
	}

	r.logger.Info("Registered application instance", slog.String("instance", created.ID()))
	r.publisher.Publish(events.NewInstanceCreated(created))

	return nil
}

// Sources converts configured instances into service instances, placing the
// endpoints under the well-known metadata key.
func Sources(instances []config.InstanceConfig) []instance.ServiceInstance {
	sources := make([]instance.ServiceInstance, 0, len(instances))
	for _, ic := range instances {
		metadata := map[string]any{}
		if len(ic.Endpoints) > 0 {
			metadata[instance.EndpointsMetadataKey] = ic.Endpoints
		}
		sources = append(sources, instance.ServiceInstance{
			ID:       ic.ID,
			Name:     ic.Name,
			URI:      ic.URI,
			Metadata: metadata,
		})
	}

	return sources
}
