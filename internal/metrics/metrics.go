package metrics

import (
	"sort"
	"sync"
	"time"
)

// maxSweepSamples caps the sweep durations kept for percentiles.
const maxSweepSamples = 1000

type Metrics struct {
	mutex          sync.RWMutex
	instances      map[string]*InstanceMetrics
	sweeps         int64
	sweepFailures  int64
	sweepDurations []time.Duration
	startTime      time.Time
}

type Snapshot struct {
	Uptime        time.Duration              `json:"uptime"`
	TotalPolls    int64                      `json:"total_polls"`
	DroppedEvents int64                      `json:"dropped_events"`
	Sweeps        SweepMetrics               `json:"sweeps"`
	Instances     map[string]InstanceMetrics `json:"instances"`
}

type SweepMetrics struct {
	Count    int64         `json:"count"`
	Failures int64         `json:"failures"`
	Avg      time.Duration `json:"avg"`
	P50      time.Duration `json:"p50"`
	P95      time.Duration `json:"p95"`
	P99      time.Duration `json:"p99"`
}

type InstanceMetrics struct {
	Succeeded           int64     `json:"succeeded"`
	Failed              int64     `json:"failed"`
	ConsecutiveFailures int64     `json:"consecutive_failures"`
	LastStatus          string    `json:"last_status,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
	LastCheck           time.Time `json:"last_check,omitzero"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		instances: make(map[string]*InstanceMetrics),
		startTime: time.Now(),
	}
}

// must be called with the write lock held
func (m *Metrics) instance(id string) *InstanceMetrics {
	im, ok := m.instances[id]
	if !ok {
		im = &InstanceMetrics{}
		m.instances[id] = im
	}
	return im
}

func (m *Metrics) RecordRegistration(id, status string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	im := m.instance(id)
	if im.LastStatus == "" {
		im.LastStatus = status
	}
}

func (m *Metrics) RecordSuccess(id, status string, at time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	im := m.instance(id)
	im.Succeeded++
	im.ConsecutiveFailures = 0
	im.LastStatus = status
	im.LastError = ""
	im.LastCheck = at
}

func (m *Metrics) RecordFailure(id, reason string, at time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	im := m.instance(id)
	im.Failed++
	im.ConsecutiveFailures++
	im.LastError = reason
	im.LastCheck = at
}

func (m *Metrics) RecordSweep(duration time.Duration, failed bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.sweeps++
	if failed {
		m.sweepFailures++
	}

	m.sweepDurations = append(m.sweepDurations, duration)
	if len(m.sweepDurations) > maxSweepSamples {
		m.sweepDurations = m.sweepDurations[1:]
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:    time.Since(m.startTime),
		Instances: make(map[string]InstanceMetrics, len(m.instances)),
		Sweeps: SweepMetrics{
			Count:    m.sweeps,
			Failures: m.sweepFailures,
		},
	}

	for id, im := range m.instances {
		snap.Instances[id] = *im
		snap.TotalPolls += im.Succeeded + im.Failed
	}

	if len(m.sweepDurations) > 0 {
		sorted := make([]time.Duration, len(m.sweepDurations))
		copy(sorted, m.sweepDurations)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i] < sorted[j]
		})

		snap.Sweeps.Avg = average(sorted)
		snap.Sweeps.P50 = percentile(sorted, 0.50)
		snap.Sweeps.P95 = percentile(sorted, 0.95)
		snap.Sweeps.P99 = percentile(sorted, 0.99)
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
