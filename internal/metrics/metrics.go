package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects gateway counters. All methods are safe for concurrent use.
type Metrics struct {
	// Request metrics
	TotalRequests atomic.Uint64

	// Extraction metrics
	ExtractionsOK       atomic.Uint64
	ExtractionsFailed   atomic.Uint64
	ExtractionTimeouts  atomic.Uint64
	ActiveExtractions   atomic.Int64
	lastExtractionMicro atomic.Int64

	// Cache metrics
	CacheHits   atomic.Uint64
	CacheMisses atomic.Uint64

	// Proxy metrics
	ProxyStreams  atomic.Uint64
	ProxyFailures atomic.Uint64
	ProxyBytes    atomic.Uint64
	ActiveStreams atomic.Int64

	startedAt time.Time

	// Per-source-host metrics
	hostStats sync.Map // host -> *HostStats
}

// HostStats tracks extractions per source host
type HostStats struct {
	Total     atomic.Uint64
	Succeeded atomic.Uint64
	Failed    atomic.Uint64
}

// New creates an empty Metrics starting its uptime clock now
func New() *Metrics {
	return &Metrics{startedAt: time.Now()}
}

// IncrementRequests increments the total request counter
func (m *Metrics) IncrementRequests() {
	m.TotalRequests.Add(1)
}

// RecordExtractionStart records an extraction about to run for host
func (m *Metrics) RecordExtractionStart(host string) {
	m.ActiveExtractions.Add(1)
	m.host(host).Total.Add(1)
}

// RecordExtractionSuccess records a finished extraction
func (m *Metrics) RecordExtractionSuccess(host string, duration time.Duration) {
	m.ActiveExtractions.Add(-1)
	m.ExtractionsOK.Add(1)
	m.lastExtractionMicro.Store(duration.Microseconds())
	m.host(host).Succeeded.Add(1)
}

// RecordExtractionFailure records a failed extraction
func (m *Metrics) RecordExtractionFailure(host string, timedOut bool) {
	m.ActiveExtractions.Add(-1)
	m.ExtractionsFailed.Add(1)
	if timedOut {
		m.ExtractionTimeouts.Add(1)
	}
	m.host(host).Failed.Add(1)
}

// RecordCacheHit records a response served from cache
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Add(1)
}

// RecordCacheMiss records a cache lookup that found nothing
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Add(1)
}

// RecordStreamStart records a proxied stream whose upstream opened
func (m *Metrics) RecordStreamStart() {
	m.ProxyStreams.Add(1)
	m.ActiveStreams.Add(1)
}

// RecordStreamEnd records a finished stream and the bytes it relayed
func (m *Metrics) RecordStreamEnd(bytes int64) {
	m.ActiveStreams.Add(-1)
	if bytes > 0 {
		m.ProxyBytes.Add(uint64(bytes))
	}
}

// RecordStreamFailure records a stream whose upstream could not be opened
func (m *Metrics) RecordStreamFailure() {
	m.ProxyFailures.Add(1)
}

func (m *Metrics) host(host string) *HostStats {
	if host == "" {
		host = "unknown"
	}
	stats, _ := m.hostStats.LoadOrStore(host, &HostStats{})
	return stats.(*HostStats)
}

// GetSnapshot returns current metrics snapshot
func (m *Metrics) GetSnapshot() map[string]interface{} {
	ok := m.ExtractionsOK.Load()
	failed := m.ExtractionsFailed.Load()

	successRate := float64(0)
	if total := ok + failed; total > 0 {
		successRate = float64(ok) / float64(total) * 100
	}

	return map[string]interface{}{
		"uptime_seconds": int64(time.Since(m.startedAt).Seconds()),
		"total_requests": m.TotalRequests.Load(),
		"extractions": map[string]interface{}{
			"succeeded":        ok,
			"failed":           failed,
			"timeouts":         m.ExtractionTimeouts.Load(),
			"active":           m.ActiveExtractions.Load(),
			"success_rate":     successRate,
			"last_duration_ms": m.lastExtractionMicro.Load() / 1000,
		},
		"cache": map[string]interface{}{
			"hits":   m.CacheHits.Load(),
			"misses": m.CacheMisses.Load(),
		},
		"proxy": map[string]interface{}{
			"streams":       m.ProxyStreams.Load(),
			"failures":      m.ProxyFailures.Load(),
			"active":        m.ActiveStreams.Load(),
			"bytes_relayed": m.ProxyBytes.Load(),
		},
		"hosts": m.getHostSnapshot(),
	}
}

// getHostSnapshot returns per-host extraction counts
func (m *Metrics) getHostSnapshot() map[string]interface{} {
	hosts := make(map[string]interface{})

	m.hostStats.Range(func(key, value interface{}) bool {
		stats := value.(*HostStats)
		hosts[key.(string)] = map[string]interface{}{
			"total":     stats.Total.Load(),
			"succeeded": stats.Succeeded.Load(),
			"failed":    stats.Failed.Load(),
		}
		return true
	})

	return hosts
}
