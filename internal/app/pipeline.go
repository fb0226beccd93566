// Package app wires the crawl pipeline together and drives it either
// once or on a recurring schedule.
package app

import (
	"context"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/meiri-hq/meiri-yaowen/internal/archive"
	"github.com/meiri-hq/meiri-yaowen/internal/config"
	"github.com/meiri-hq/meiri-yaowen/internal/domain"
	"github.com/meiri-hq/meiri-yaowen/internal/logger"
	"github.com/meiri-hq/meiri-yaowen/internal/notify"
	"github.com/meiri-hq/meiri-yaowen/internal/publish"
	"github.com/meiri-hq/meiri-yaowen/internal/render"
)

// Fetcher retrieves raw HTML for one target URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns HTML into deduplicated records.
type Extractor interface {
	Extract(html []byte, sourceURL string) []domain.Record
}

// Committer commits a digest file, reporting whether a commit happened.
type Committer interface {
	Commit(ctx context.Context, path string) bool
}

// Pipeline is one crawl-extract-render-publish cycle. It holds no
// per-run state, so one Pipeline can be driven repeatedly by a
// scheduler.
type Pipeline struct {
	cfg       *config.Config
	fetcher   Fetcher
	extractor Extractor
	committer Committer
	sinks     []notify.Sink
	store     *archive.Store
	log       logger.Logger
	now       func() time.Time
}

// NewPipeline assembles a pipeline. committer and store may be nil when
// git publishing or archiving is disabled.
func NewPipeline(
	cfg *config.Config,
	fetcher Fetcher,
	extractor Extractor,
	committer Committer,
	sinks []notify.Sink,
	store *archive.Store,
	log logger.Logger,
) *Pipeline {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		committer: committer,
		sinks:     sinks,
		store:     store,
		log:       log,
		now:       time.Now,
	}
}

// Run executes one full cycle: crawl every target sequentially with a
// randomized delay between requests, then render, save, commit, notify
// and archive the aggregate. A target failure never aborts the
// remaining targets; an empty aggregate skips publishing entirely.
func (p *Pipeline) Run(ctx context.Context) error {
	set := domain.NewRecordSet()

	for i, target := range p.cfg.Targets {
		p.crawlTarget(ctx, target, set)

		if i < len(p.cfg.Targets)-1 {
			if err := p.pause(ctx); err != nil {
				return err
			}
		}
	}

	if set.Len() == 0 {
		p.log.InfoObj("no records extracted, skipping publish", "run_empty", map[string]any{
			"targets": len(p.cfg.Targets),
		})
		return nil
	}

	return p.publish(ctx, set)
}

func (p *Pipeline) crawlTarget(ctx context.Context, target string, set *domain.RecordSet) {
	html, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		p.log.WarnObj("target fetch failed", "run_fetch_error", map[string]any{
			"url":   target,
			"error": err.Error(),
		})
		return
	}

	records := p.extractor.Extract(html, target)
	p.log.InfoObj("target crawled", "run_target_done", map[string]any{
		"url":     target,
		"records": len(records),
	})
	set.AddAll(records)
}

// pause sleeps a randomized interval within the configured delay range.
// Randomized rather than fixed so the request cadence does not look
// mechanical to the portals.
func (p *Pipeline) pause(ctx context.Context) error {
	minDelay, maxDelay := p.cfg.DelayRange()
	delay := minDelay
	if span := maxDelay - minDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	if delay <= 0 {
		return nil
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) publish(ctx context.Context, set *domain.RecordSet) error {
	now := p.now()
	records := set.Records()

	text, ok := render.Markdown(records, now)
	if !ok {
		return nil
	}

	path := filepath.Join(p.cfg.Output.Dir, publish.DigestFilename(now))
	if err := publish.Save(text, path); err != nil {
		p.log.ErrorObj("digest save failed", "run_save_error", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return nil
	}
	p.log.InfoObj("digest saved", "run_saved", map[string]any{
		"path":    path,
		"records": len(records),
	})

	if p.cfg.Output.CSV {
		if csvText, ok := render.CSV(records); ok {
			csvPath := filepath.Join(p.cfg.Output.Dir, publish.CSVFilename(now))
			if err := publish.Save(csvText, csvPath); err != nil {
				p.log.ErrorObj("csv save failed", "run_csv_error", map[string]any{
					"path":  csvPath,
					"error": err.Error(),
				})
			}
		}
	}

	committed := false
	if p.committer != nil {
		committed = p.committer.Commit(ctx, path)
	}

	evt := domain.DigestEvent{
		Date:        now.Format("2006-01-02"),
		Path:        path,
		RecordCount: len(records),
		Sources:     set.Sources(),
		Committed:   committed,
		GeneratedAt: now.Format(time.RFC3339),
	}
	notify.NotifyAll(ctx, p.sinks, evt, p.log)

	if p.store != nil {
		if err := p.store.SaveDay(now, records); err != nil {
			p.log.WarnObj("archive write failed", "run_archive_error", map[string]any{
				"error": err.Error(),
			})
		}
	}

	return nil
}
