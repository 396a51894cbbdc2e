// Package metrics keeps in-process counters and sampled histograms and
// reports them as a JSON-friendly snapshot.
package metrics

import (
	"container/ring"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxSamples is the number of recent values a histogram keeps for
// its percentiles.
const DefaultMaxSamples = 1000

// Collector represents the metrics collector. Metrics are created on first
// use; a nil *Collector records nothing.
type Collector struct {
	prefix     string
	maxSamples int
	startTime  time.Time

	mu         sync.RWMutex
	counters   map[string]*atomic.Int64
	histograms map[string]*Histogram
}

// NewCollector creates a collector whose metric names start with prefix.
func NewCollector(prefix string, maxSamples int) *Collector {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Collector{
		prefix:     prefix,
		maxSamples: maxSamples,
		startTime:  time.Now(),
		counters:   make(map[string]*atomic.Int64),
		histograms: make(map[string]*Histogram),
	}
}

func (c *Collector) counter(name string) *atomic.Int64 {
	name = c.prefix + name
	c.mu.RLock()
	ctr, ok := c.counters[name]
	c.mu.RUnlock()
	if ok {
		return ctr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ctr, ok = c.counters[name]; !ok {
		ctr = &atomic.Int64{}
		c.counters[name] = ctr
	}
	return ctr
}

func (c *Collector) histogram(name string) *Histogram {
	name = c.prefix + name
	c.mu.RLock()
	h, ok := c.histograms[name]
	c.mu.RUnlock()
	if ok {
		return h
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok = c.histograms[name]; !ok {
		h = NewHistogram(c.maxSamples)
		c.histograms[name] = h
	}
	return h
}

// AddCounter adds to counter value
func (c *Collector) AddCounter(name string, delta int64) {
	if c == nil {
		return
	}
	c.counter(name).Add(delta)
}

// GetCounter gets a counter value
func (c *Collector) GetCounter(name string) int64 {
	if c == nil {
		return 0
	}
	return c.counter(name).Load()
}

// RecordValue adds a sample to a histogram.
func (c *Collector) RecordValue(name string, v float64) {
	if c == nil {
		return
	}
	c.histogram(name).Add(v)
}

// RecordDuration records a duration in seconds.
func (c *Collector) RecordDuration(name string, d time.Duration) {
	c.RecordValue(name, d.Seconds())
}

// GetHistogram gets a histogram value
func (c *Collector) GetHistogram(name string) HistogramStats {
	if c == nil {
		return HistogramStats{}
	}
	return c.histogram(name).GetStats()
}

// Snapshot returns every metric by name plus the uptime.
func (c *Collector) Snapshot() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	counters := make(map[string]int64, len(c.counters))
	for name, ctr := range c.counters {
		counters[name] = ctr.Load()
	}
	histograms := make(map[string]HistogramStats, len(c.histograms))
	for name, h := range c.histograms {
		histograms[name] = h.GetStats()
	}
	return map[string]any{
		"counters":   counters,
		"histograms": histograms,
		"runtime": map[string]any{
			"uptime":     time.Since(c.startTime).Seconds(),
			"start_time": c.startTime.Unix(),
		},
	}
}

// Histogram keeps exact count, sum, min and max and the most recent
// samples for percentiles.
type Histogram struct {
	mu      sync.Mutex
	samples *ring.Ring
	size    int
	count   int64
	sum     float64
	min     float64
	max     float64
	pcts    []float64
}

// NewHistogram creates a new histogram
func NewHistogram(maxSamples int, percentiles ...float64) *Histogram {
	if len(percentiles) == 0 {
		percentiles = []float64{50, 90, 95, 99}
	}
	return &Histogram{
		samples: ring.New(maxSamples),
		size:    maxSamples,
		min:     math.Inf(1),
		max:     math.Inf(-1),
		pcts:    percentiles,
	}
}

// Add adds a value to the histogram
func (h *Histogram) Add(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count++
	h.sum += v
	h.min = math.Min(h.min, v)
	h.max = math.Max(h.max, v)
	h.samples.Value = v
	h.samples = h.samples.Next()
}

// Reset resets the histogram
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = ring.New(h.size)
	h.count, h.sum = 0, 0
	h.min, h.max = math.Inf(1), math.Inf(-1)
}

// HistogramStats returns histogram statistics
type HistogramStats struct {
	Count       int64              `json:"count"`
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	Mean        float64            `json:"mean"`
	Percentiles map[string]float64 `json:"percentiles,omitempty"`
}

// GetStats returns current histogram statistics
func (h *Histogram) GetStats() HistogramStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return HistogramStats{}
	}

	samples := make([]float64, 0, h.size)
	h.samples.Do(func(v any) {
		if f, ok := v.(float64); ok {
			samples = append(samples, f)
		}
	})
	sort.Float64s(samples)

	stats := HistogramStats{
		Count:       h.count,
		Min:         h.min,
		Max:         h.max,
		Mean:        h.sum / float64(h.count),
		Percentiles: make(map[string]float64, len(h.pcts)),
	}
	for _, p := range h.pcts {
		idx := int(float64(len(samples)) * p / 100)
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		stats.Percentiles[percentileKey(p)] = samples[idx]
	}
	return stats
}

func percentileKey(p float64) string {
	return "p" + strings.ReplaceAll(strconv.FormatFloat(p, 'f', -1, 64), ".", "_")
}
