package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
	"github.com/meiri-hq/meiri-yaowen/internal/logger"
)

// Sink receives digest-published events.
type Sink interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt domain.DigestEvent) error
}

// Builder creates a Sink from a config entry.
type Builder func(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error)

// Registry maps sink types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	SinkFor(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a sink type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// SinkFor returns the sink built for the provided config.
func (r *registry) SinkFor(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("sink %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no sink registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up the known sink types.
func DefaultRegistry() Registry {
	builders := map[string]Builder{
		TypeHTTP:  newHTTPSink,
		TypeQueue: newQueueSink,
	}
	return NewRegistry(builders)
}

// BuildAll instantiates sinks for the given configs using the registry.
func BuildAll(ctx context.Context, reg Registry, cfgs []SinkConfig, log logger.Logger) ([]Sink, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	var sinks []Sink
	for _, cfg := range cfgs {
		sink, err := reg.SinkFor(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

// NotifyAll delivers the event to every sink, logging failures without
// propagating them: a dead sink never fails the pipeline.
func NotifyAll(ctx context.Context, sinks []Sink, evt domain.DigestEvent, log logger.Logger) {
	log = ensureLogger(log)
	for _, sink := range sinks {
		if err := sink.Notify(ctx, evt); err != nil {
			log.WarnObj("sink delivery failed", "notify_error", map[string]any{
				"sink_id": sink.ID(),
				"type":    sink.Type(),
				"error":   err.Error(),
			})
			continue
		}
		log.DebugObj("sink delivered digest event", "notify_ok", map[string]any{
			"sink_id": sink.ID(),
			"date":    evt.Date,
		})
	}
}

func ensureLogger(log logger.Logger) logger.Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
