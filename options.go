package fluxgo

import (
	"log/slog"

	"github.com/fluxgo/fluxgo/imagestore"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	store            imagestore.Store
	verifyChecksum   bool
}

// Option configures Decoder open behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := fluxgo.NewJSONLogger(slog.LevelInfo)
//	d, _ := fluxgo.Open("disk.scp", fluxgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &fluxgo.BasicMetricsCollector{}
//	d, _ := fluxgo.Open("disk.scp", fluxgo.WithMetricsCollector(metrics))
//	// ... decode ...
//	stats := metrics.GetStats()
//	fmt.Printf("Tracks filled: %d\n", stats.TrackFilledCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithVerifyChecksum enables header checksum verification on open.
// The checksum covers every byte after the descriptor; images with the
// writable flag set carry none and skip the check. Off by default: the
// field is advisory and some capture tools leave it stale.
func WithVerifyChecksum(verify bool) Option {
	return func(o *options) {
		o.verifyChecksum = verify
	}
}

// WithStore makes Open read the image from the given store instead of
// the local filesystem. Equivalent to OpenStore with a background
// context.
func WithStore(store imagestore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
