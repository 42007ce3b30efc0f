package events_test

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/healthwatch/internal/events"
	"github.com/angeloszaimis/healthwatch/internal/instance"
)

var _ = Describe("InProcessBus", func() {
	var (
		bus    *events.InProcessBus
		output *bytes.Buffer
	)

	BeforeEach(func() {
		output = &bytes.Buffer{}
		bus = events.NewBus(slog.New(slog.NewTextHandler(output, nil)))
	})

	It("should deliver an event to every handler of its type", func() {
		var first, second []events.Event
		bus.Subscribe(events.TypeHealthRetrieved, func(e events.Event) { first = append(first, e) })
		bus.Subscribe(events.TypeHealthRetrieved, func(e events.Event) { second = append(second, e) })

		event := events.NewHealthRetrieved("a-1", instance.Health{Status: instance.StatusUp})
		bus.Publish(event)

		Expect(first).To(ConsistOf(event))
		Expect(second).To(ConsistOf(event))
	})

	It("should not deliver events of other types", func() {
		called := false
		bus.Subscribe(events.TypeHealthRetrievalFailed, func(events.Event) { called = true })

		bus.Publish(events.NewHealthRetrieved("a-1", instance.Health{Status: instance.StatusUp}))

		Expect(called).To(BeFalse())
	})

	It("should publish without subscribers", func() {
		Expect(func() {
			bus.Publish(events.NewInstanceCreated(instance.Restore("a-1", "", nil, "")))
		}).NotTo(Panic())
	})

	It("should isolate a panicking handler", func() {
		delivered := false
		bus.Subscribe(events.TypeHealthRetrieved, func(events.Event) { panic("boom") })
		bus.Subscribe(events.TypeHealthRetrieved, func(events.Event) { delivered = true })

		Expect(func() {
			bus.Publish(events.NewHealthRetrieved("a-1", instance.Health{Status: instance.StatusUp}))
		}).NotTo(Panic())

		Expect(delivered).To(BeTrue())
		Expect(output.String()).To(ContainSubstring("Event handler panicked"))
	})

	It("should be safe for concurrent publish and subscribe", func() {
		var (
			mutex sync.Mutex
			count int
		)
		events.On(bus, func(events.HealthRetrievalFailed) {
			mutex.Lock()
			count++
			mutex.Unlock()
		})

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				bus.Publish(events.NewHealthRetrievalFailed("a-1", "http://h/health", errors.New("down")))
			}()
			go func() {
				defer wg.Done()
				bus.Subscribe(events.TypeInstanceCreated, func(events.Event) {})
			}()
		}
		wg.Wait()

		Expect(count).To(Equal(50))
	})

	Describe("On", func() {
		It("should hand over the typed event", func() {
			var got events.HealthRetrievalFailed
			events.On(bus, func(e events.HealthRetrievalFailed) { got = e })

			cause := errors.New("OOPSIE!")
			bus.Publish(events.NewHealthRetrievalFailed("a-1", "http://h/actuator/health", cause))

			Expect(got.InstanceID).To(Equal("a-1"))
			Expect(got.Endpoint).To(Equal("http://h/actuator/health"))
			Expect(got.Cause).To(MatchError("OOPSIE!"))
		})
	})
})
