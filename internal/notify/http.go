package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
	"github.com/meiri-hq/meiri-yaowen/internal/logger"
)

// httpSink posts digest events to an arbitrary HTTP endpoint.
type httpSink struct {
	id     string
	typ    string
	cfg    HTTPSinkConfig
	client *resty.Client
	log    logger.Logger
}

// newHTTPSink creates an HTTP sink with its own timeout-bound client.
func newHTTPSink(_ context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second).
		SetRetryCount(0)

	return &httpSink{
		id:     cfg.ID,
		typ:    cfg.Type,
		cfg:    *cfg.HTTP,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (s *httpSink) ID() string   { return s.id }
func (s *httpSink) Type() string { return s.typ }

// Notify sends the event as a JSON body using the configured method and
// headers.
func (s *httpSink) Notify(ctx context.Context, evt domain.DigestEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal digest event: %w", err)
	}

	req := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	for k, v := range s.cfg.Headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Execute(s.cfg.Method, s.cfg.URL)
	if err != nil {
		return fmt.Errorf("%s %s: %w", s.cfg.Method, s.cfg.URL, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("%s %s: status %d", s.cfg.Method, s.cfg.URL, resp.StatusCode())
	}

	s.log.DebugObj("http sink delivered event", "notify_http_delivery", map[string]any{
		"url":    s.cfg.URL,
		"status": resp.StatusCode(),
	})
	return nil
}
