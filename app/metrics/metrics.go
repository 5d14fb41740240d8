package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const latencyWindow = 100

// Recorder aggregates poll outcomes for the operational endpoints. It keeps
// running totals plus a rolling window of recent poll latencies, and mirrors
// the counters to Prometheus for scraping.
type Recorder struct {
	mu        sync.Mutex
	startedAt time.Time

	pollTotal   int64
	pollFailed  int64
	latencies   [latencyWindow]time.Duration
	latencyLen  int
	latencyNext int

	promPolls    *prometheus.CounterVec
	promLatency  prometheus.Histogram
	registry     *prometheus.Registry
	registerOnce sync.Once
}

func NewRecorder() *Recorder {
	return &Recorder{
		startedAt: time.Now(),
		promPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetwatch_polls_total",
			Help: "Number of feed polls performed, labelled by outcome.",
		}, []string{"outcome"}),
		promLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetwatch_poll_duration_seconds",
			Help:    "Latency of feed polls.",
			Buckets: prometheus.DefBuckets,
		}),
		registry: prometheus.NewRegistry(),
	}
}

// Registry returns the Prometheus registry backing the scrape endpoint,
// registering the collectors on first use.
func (r *Recorder) Registry() *prometheus.Registry {
	r.registerOnce.Do(func() {
		r.registry.MustRegister(r.promPolls, r.promLatency)
	})
	return r.registry
}

// RecordPoll records one completed poll attempt.
func (r *Recorder) RecordPoll(success bool, latency time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.promPolls.WithLabelValues(outcome).Inc()
	r.promLatency.Observe(latency.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pollTotal++
	if !success {
		r.pollFailed++
	}
	r.latencies[r.latencyNext] = latency
	r.latencyNext = (r.latencyNext + 1) % latencyWindow
	if r.latencyLen < latencyWindow {
		r.latencyLen++
	}
}

// Snapshot is a point-in-time view of the recorder for the JSON endpoint.
type Snapshot struct {
	UptimeSec    int64   `json:"uptime_sec"`
	PollTotal    int64   `json:"poll_total"`
	PollSuccess  int64   `json:"poll_success"`
	PollFailed   int64   `json:"poll_failed"`
	LatencyMinMs float64 `json:"latency_min_ms"`
	LatencyAvgMs float64 `json:"latency_avg_ms"`
	LatencyMaxMs float64 `json:"latency_max_ms"`
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		UptimeSec:   int64(time.Since(r.startedAt).Seconds()),
		PollTotal:   r.pollTotal,
		PollSuccess: r.pollTotal - r.pollFailed,
		PollFailed:  r.pollFailed,
	}
	if r.latencyLen == 0 {
		return snap
	}

	min, max := r.latencies[0], r.latencies[0]
	var sum time.Duration
	for i := 0; i < r.latencyLen; i++ {
		d := r.latencies[i]
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
		sum += d
	}

	snap.LatencyMinMs = float64(min.Microseconds()) / 1000
	snap.LatencyMaxMs = float64(max.Microseconds()) / 1000
	snap.LatencyAvgMs = float64((sum / time.Duration(r.latencyLen)).Microseconds()) / 1000
	return snap
}
