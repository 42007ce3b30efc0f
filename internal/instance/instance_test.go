package instance_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/healthwatch/internal/apperror"
	"github.com/angeloszaimis/healthwatch/internal/instance"
)

var _ = Describe("Instance", func() {
	Describe("From", func() {
		It("should extract id, uri and endpoints", func() {
			inst, err := instance.From(instance.ServiceInstance{
				ID:  "a-1",
				URI: "http://h:8080",
				Metadata: map[string]any{
					"endpoints": map[string]string{"health": "http://h/actuator/health"},
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.ID()).To(Equal("a-1"))
			Expect(inst.URI()).To(Equal("http://h:8080"))
			Expect(inst.Endpoints()).To(Equal(map[string]string{"health": "http://h/actuator/health"}))
		})

		It("should start with UNKNOWN health", func() {
			inst, err := instance.From(instance.ServiceInstance{ID: "a-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.HealthStatus()).To(Equal(instance.StatusUnknown))
		})

		It("should yield an empty endpoint map when the metadata key is absent", func() {
			inst, err := instance.From(instance.ServiceInstance{ID: "a-1", Metadata: map[string]any{"zone": "eu"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Endpoints()).To(BeEmpty())
			_, ok := inst.HealthEndpoint()
			Expect(ok).To(BeFalse())
		})

		It("should accept generic maps as decoded from YAML", func() {
			inst, err := instance.From(instance.ServiceInstance{
				ID: "a-1",
				Metadata: map[string]any{
					"endpoints": map[string]any{"health": "http://h/actuator/health"},
				},
			})

			Expect(err).NotTo(HaveOccurred())
			uri, ok := inst.HealthEndpoint()
			Expect(ok).To(BeTrue())
			Expect(uri).To(Equal("http://h/actuator/health"))
		})

		It("should accept a JSON encoded endpoint map", func() {
			inst, err := instance.From(instance.ServiceInstance{
				ID:       "a-1",
				Metadata: map[string]any{"endpoints": `{"health":"http://h/actuator/health"}`},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Endpoints()).To(HaveKeyWithValue("health", "http://h/actuator/health"))
		})

		It("should reject a missing id", func() {
			_, err := instance.From(instance.ServiceInstance{URI: "http://h"})

			Expect(err).To(HaveOccurred())
			Expect(apperror.IsBadParameterError(err)).To(BeTrue())
		})

		It("should reject malformed endpoint metadata", func() {
			_, err := instance.From(instance.ServiceInstance{
				ID:       "a-1",
				Metadata: map[string]any{"endpoints": "not json"},
			})

			Expect(apperror.IsBadParameterError(err)).To(BeTrue())
		})

		It("should reject relative endpoint URIs", func() {
			_, err := instance.From(instance.ServiceInstance{
				ID:       "a-1",
				Metadata: map[string]any{"endpoints": map[string]string{"health": "/actuator/health"}},
			})

			Expect(apperror.IsBadParameterError(err)).To(BeTrue())
		})
	})

	Describe("Endpoints", func() {
		It("should not expose the internal map", func() {
			inst := instance.Restore("a-1", "", map[string]string{"health": "http://h/health"}, instance.StatusUp)

			endpoints := inst.Endpoints()
			endpoints["health"] = "http://other/health"

			uri, _ := inst.HealthEndpoint()
			Expect(uri).To(Equal("http://h/health"))
		})
	})

	Describe("UpdateHealthStatus", func() {
		It("should replace the status in memory", func() {
			inst := instance.Restore("a-1", "", nil, "")
			Expect(inst.HealthStatus()).To(Equal(instance.StatusUnknown))

			inst.UpdateHealthStatus(instance.StatusDown)
			Expect(inst.HealthStatus()).To(Equal(instance.StatusDown))
		})
	})

	Describe("Equal", func() {
		It("should compare by id only", func() {
			a := instance.Restore("a-1", "http://one", nil, instance.StatusUp)
			b := instance.Restore("a-1", "http://two", nil, instance.StatusDown)
			c := instance.Restore("a-2", "http://one", nil, instance.StatusUp)

			Expect(a.Equal(b)).To(BeTrue())
			Expect(a.Equal(c)).To(BeFalse())
			Expect(a.Equal(nil)).To(BeFalse())
		})
	})

	Describe("JSON", func() {
		It("should encode the flat record", func() {
			inst := instance.Restore("a-1", "http://h", map[string]string{"health": "http://h/health"}, instance.StatusUp)

			data, err := json.Marshal(inst)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"id":"a-1","uri":"http://h","endpoints":{"health":"http://h/health"},"health_status":"UP"}`))

			var decoded instance.Instance
			Expect(json.Unmarshal(data, &decoded)).To(Succeed())
			Expect(decoded.ID()).To(Equal("a-1"))
			Expect(decoded.HealthStatus()).To(Equal(instance.StatusUp))
		})
	})
})
