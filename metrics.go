package fluxgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    openCounter     prometheus.Counter
//	    decodeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordOpen(duration time.Duration, err error) {
//	    p.openCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordOpen is called after each image open.
	// duration is the total time taken, err is nil if successful.
	RecordOpen(duration time.Duration, err error)

	// RecordTrackLoad is called after each track select during decode.
	RecordTrackLoad(duration time.Duration, err error)

	// RecordTrackDecode is called after each produced track.
	// halfbits is the count emitted before padding; filled reports
	// whether the track was substituted with filler.
	RecordTrackDecode(halfbits int, duration time.Duration, filled bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)            {}
func (NoopMetricsCollector) RecordTrackLoad(time.Duration, error)       {}
func (NoopMetricsCollector) RecordTrackDecode(int, time.Duration, bool) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount             atomic.Int64
	OpenErrors            atomic.Int64
	TrackLoadCount        atomic.Int64
	TrackLoadErrors       atomic.Int64
	TrackLoadTotalNanos   atomic.Int64
	TrackDecodeCount      atomic.Int64
	TrackFilledCount      atomic.Int64
	TrackDecodeTotalNanos atomic.Int64
	HalfBitsTotal         atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordTrackLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrackLoad(duration time.Duration, err error) {
	b.TrackLoadCount.Add(1)
	b.TrackLoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrackLoadErrors.Add(1)
	}
}

// RecordTrackDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrackDecode(halfbits int, duration time.Duration, filled bool) {
	b.TrackDecodeCount.Add(1)
	b.TrackDecodeTotalNanos.Add(duration.Nanoseconds())
	b.HalfBitsTotal.Add(int64(halfbits))
	if filled {
		b.TrackFilledCount.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:           b.OpenCount.Load(),
		OpenErrors:          b.OpenErrors.Load(),
		TrackLoadCount:      b.TrackLoadCount.Load(),
		TrackLoadErrors:     b.TrackLoadErrors.Load(),
		TrackLoadAvgNanos:   b.getAvgTrackLoadNanos(),
		TrackDecodeCount:    b.TrackDecodeCount.Load(),
		TrackFilledCount:    b.TrackFilledCount.Load(),
		TrackDecodeAvgNanos: b.getAvgTrackDecodeNanos(),
		HalfBitsTotal:       b.HalfBitsTotal.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgTrackLoadNanos() int64 {
	count := b.TrackLoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.TrackLoadTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgTrackDecodeNanos() int64 {
	count := b.TrackDecodeCount.Load()
	if count == 0 {
		return 0
	}
	return b.TrackDecodeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount           int64
	OpenErrors          int64
	TrackLoadCount      int64
	TrackLoadErrors     int64
	TrackLoadAvgNanos   int64
	TrackDecodeCount    int64
	TrackFilledCount    int64
	TrackDecodeAvgNanos int64
	HalfBitsTotal       int64
}
