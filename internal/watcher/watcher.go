package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/angeloszaimis/healthwatch/internal/events"
	"github.com/angeloszaimis/healthwatch/internal/instance"
)

// Directory is the part of the instance directory the watcher needs.
type Directory interface {
	ListAll(ctx context.Context) ([]*instance.Instance, error)
	UpdateHealth(ctx context.Context, id string, status instance.Status) error
}

type options struct {
	ctx     context.Context
	timeout time.Duration
}

type Option func(*options)

// Context sets the context every poll derives from. Cancelling it aborts
// in-flight polls, which then report a retrieval failure.
func Context(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// Timeout bounds a single poll.
func Timeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

type Watcher struct {
	opts      *options
	directory Directory
	fetcher   Fetcher
	publisher events.Publisher
	logger    *slog.Logger
	polls     conc.WaitGroup
}

func New(directory Directory, fetcher Fetcher, publisher events.Publisher, logger *slog.Logger, opt ...Option) *Watcher {
	opts := &options{
		ctx:     context.Background(),
		timeout: 5 * time.Second,
	}
	for _, o := range opt {
		o(opts)
	}

	return &Watcher{
		opts:      opts,
		directory: directory,
		fetcher:   fetcher,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "health-watcher")),
	}
}

// Register subscribes the watcher's listeners on bus.
func (w *Watcher) Register(bus events.Bus) {
	events.On(bus, w.OnInstanceCreated)
	events.On(bus, w.OnHealthRetrieved)
}

// OnInstanceCreated starts one poll for the new instance if it advertises a
// health endpoint.
func (w *Watcher) OnInstanceCreated(event events.InstanceCreated) {
	if event.Instance == nil {
		return
	}
	w.poll(event.Instance)
}

// PollAll starts one poll per instance that currently advertises a health
// endpoint. Instances created after the snapshot is taken are left to the
// next sweep.
func (w *Watcher) PollAll(ctx context.Context) error {
	w.logger.Info("Retrieving [HEALTH] data for all application instances")

	all, err := w.directory.ListAll(ctx)
	if err != nil {
		w.logger.Error("Could not list application instances", slog.Any("err", err))
		return fmt.Errorf("poll all: %w", err)
	}

	for _, inst := range all {
		if _, ok := inst.HealthEndpoint(); !ok {
			continue
		}
		w.logger.Info(fmt.Sprintf("Retrieving [HEALTH] data for %s", inst.ID()),
			slog.String("instance", inst.ID()))
		w.poll(inst)
	}

	return nil
}

// OnHealthRetrieved persists the retrieved status. A failure here means the
// event stream and the directory disagree; it is logged and dropped.
func (w *Watcher) OnHealthRetrieved(event events.HealthRetrieved) {
	ctx, cancel := context.WithTimeout(w.opts.ctx, w.opts.timeout)
	defer cancel()

	if err := w.directory.UpdateHealth(ctx, event.InstanceID, event.Health.Status); err != nil {
		w.logger.Error("Could not update health status",
			slog.String("instance", event.InstanceID),
			slog.String("status", event.Health.Status.String()),
			slog.Any("err", err))
	}
}

// Wait blocks until every started poll has published its outcome.
func (w *Watcher) Wait() {
	if recovered := w.polls.WaitAndRecover(); recovered != nil {
		w.logger.Error("Health poll panicked", slog.String("panic", fmt.Sprint(recovered.Value)))
	}
}

func (w *Watcher) poll(inst *instance.Instance) {
	endpoint, ok := inst.HealthEndpoint()
	if !ok {
		return
	}
	id := inst.ID()

	w.polls.Go(func() {
		ctx, cancel := context.WithTimeout(w.opts.ctx, w.opts.timeout)
		defer cancel()

		health, err := w.fetcher.Fetch(ctx, endpoint)
		if err != nil {
			w.logger.Warn(fmt.Sprintf("Could not retrieve health information for [%s]", endpoint),
				slog.String("instance", id),
				slog.Any("err", err))
			w.publisher.Publish(events.NewHealthRetrievalFailed(id, endpoint, err))
			return
		}

		w.logger.Info(fmt.Sprintf("Retrieved health information for application instance [%s]", id),
			slog.String("instance", id),
			slog.String("status", health.Status.String()))
		w.publisher.Publish(events.NewHealthRetrieved(id, health))
	})
}
