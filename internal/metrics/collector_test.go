package metrics_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/healthwatch/internal/events"
	"github.com/angeloszaimis/healthwatch/internal/instance"
	"github.com/angeloszaimis/healthwatch/internal/metrics"
)

type stubSweeper struct {
	err error
}

func (s stubSweeper) PollAll(context.Context) error {
	return s.err
}

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		bus       *events.InProcessBus
		log       *slog.Logger
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx, cancel = context.WithCancel(context.Background())
		bus = events.NewBus(log)
		collector = metrics.NewCollector(100, log)
		collector.Subscribe(bus)
	})

	AfterEach(func() {
		cancel()
	})

	instanceMetrics := func(id string) func() metrics.InstanceMetrics {
		return func() metrics.InstanceMetrics {
			return collector.Snapshot().Instances[id]
		}
	}

	Describe("Subscribe", func() {
		BeforeEach(func() {
			collector.Start(ctx)
		})

		It("should track created instances", func() {
			inst, err := instance.From(instance.ServiceInstance{ID: "a-1", URI: "http://h"})
			Expect(err).NotTo(HaveOccurred())

			bus.Publish(events.NewInstanceCreated(inst))

			Eventually(func() map[string]metrics.InstanceMetrics {
				return collector.Snapshot().Instances
			}).Should(HaveKey("a-1"))
			Expect(collector.Snapshot().Instances["a-1"].LastStatus).To(Equal("UNKNOWN"))
		})

		It("should count retrieved health", func() {
			bus.Publish(events.NewHealthRetrieved("a-1", instance.Health{Status: instance.StatusUp}))

			Eventually(instanceMetrics("a-1")).Should(And(
				HaveField("Succeeded", int64(1)),
				HaveField("LastStatus", "UP"),
			))
		})

		It("should count failed retrievals with their cause", func() {
			bus.Publish(events.NewHealthRetrievalFailed("a-1", "http://h/health", errors.New("OOPSIE!")))
			bus.Publish(events.NewHealthRetrievalFailed("a-1", "http://h/health", nil))

			Eventually(instanceMetrics("a-1")).Should(And(
				HaveField("Failed", int64(2)),
				HaveField("ConsecutiveFailures", int64(2)),
			))
		})
	})

	Describe("Instrument", func() {
		BeforeEach(func() {
			collector.Start(ctx)
		})

		It("should count sweeps and pass errors through", func() {
			failing := errors.New("store unavailable")

			Expect(collector.Instrument(stubSweeper{}).PollAll(ctx)).To(Succeed())
			Expect(collector.Instrument(stubSweeper{err: failing}).PollAll(ctx)).To(MatchError(failing))

			Eventually(func() metrics.SweepMetrics {
				return collector.Snapshot().Sweeps
			}).Should(And(
				HaveField("Count", int64(2)),
				HaveField("Failures", int64(1)),
			))
		})
	})

	Describe("Emit", func() {
		It("should drop events instead of blocking when the buffer is full", func() {
			small := metrics.NewCollector(1, log)

			small.Emit(metrics.MetricEvent{Type: metrics.EventPollSucceeded, Instance: "a-1", Status: "UP"})
			small.Emit(metrics.MetricEvent{Type: metrics.EventPollSucceeded, Instance: "a-1", Status: "UP"})

			Expect(small.Snapshot().DroppedEvents).To(Equal(int64(1)))
		})

		It("should drain events on context cancellation", func() {
			for i := 0; i < 5; i++ {
				collector.Emit(metrics.MetricEvent{Type: metrics.EventPollFailed, Instance: "a-1", Error: "OOPSIE!"})
			}

			collector.Start(ctx)
			cancel()

			Eventually(instanceMetrics("a-1")).Should(HaveField("Failed", int64(5)))
		})
	})

	Describe("Handler", func() {
		It("should serve the snapshot as JSON", func() {
			collector.Start(ctx)
			bus.Publish(events.NewHealthRetrieved("a-1", instance.Health{Status: instance.StatusDown}))
			Eventually(instanceMetrics("a-1")).Should(HaveField("Succeeded", int64(1)))

			rec := httptest.NewRecorder()
			collector.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var snap metrics.Snapshot
			Expect(json.Unmarshal(rec.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap.TotalPolls).To(Equal(int64(1)))
			Expect(snap.Instances["a-1"].LastStatus).To(Equal("DOWN"))
		})
	})
})
