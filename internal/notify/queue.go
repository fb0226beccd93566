package notify

import (
	"context"
	"fmt"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
	"github.com/meiri-hq/meiri-yaowen/internal/logger"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, evt domain.DigestEvent) error
}

// queueSink dispatches digest events to a cloud queue provider.
type queueSink struct {
	id       string
	typ      string
	provider string
	sender   queueSender
	log      logger.Logger
}

// newQueueSink creates a queue sink for the configured provider.
func newQueueSink(ctx context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("sink %q missing queue configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)

	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.SQS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queueSink{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      ensureLogger(log),
	}, nil
}

func (s *queueSink) ID() string   { return s.id }
func (s *queueSink) Type() string { return s.typ }

// Notify forwards the event to the configured queue provider.
func (s *queueSink) Notify(ctx context.Context, evt domain.DigestEvent) error {
	if err := s.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", s.provider, err)
	}
	return nil
}
