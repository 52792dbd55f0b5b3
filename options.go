package qurro

import (
	"log/slog"

	"github.com/cameronmartino/qurro/codec"
	"github.com/cameronmartino/qurro/model"
)

type options struct {
	codec            codec.Codec
	logger           *Logger
	metricsCollector MetricsCollector
	workers          int
	packetBuffer     int
	onPacket         func(model.Packet)
}

// Option configures session constructor behavior.
type Option func(*options)

// WithCodec configures the codec used by MarshalPacket.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
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

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithWorkers offloads log-ratio computations to n background workers, so
// event intake never blocks on a computation. n <= 0 keeps computations
// inline on the event goroutine (the default; results are then ordered by
// construction and the generation rule only guards against misuse).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPacketBuffer sets the capacity of the Packets channel. When the
// subscriber falls behind, the oldest buffered packet is dropped in favor of
// the newest. Default is 16.
func WithPacketBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.packetBuffer = n
		}
	}
}

// WithOnPacket registers a synchronous packet callback instead of the
// Packets channel. The callback runs on the emitting goroutine and must not
// call back into the session.
func WithOnPacket(fn func(model.Packet)) Option {
	return func(o *options) {
		o.onPacket = fn
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		packetBuffer:     16,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
