// Package extractor turns raw portal HTML into headline records. A
// registry maps host predicates to extraction strategies; a generic
// anchor scan is the always-available fallback.
package extractor

import (
	"bytes"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
	"github.com/meiri-hq/meiri-yaowen/internal/logger"
)

// Strategy extracts records from a parsed document. Match decides
// whether the strategy applies to the given host.
type Strategy interface {
	ID() string
	Match(host string) bool
	Extract(doc *goquery.Document, page *url.URL, now time.Time) []domain.Record
}

// Registry holds site strategies in registration order plus the
// fallback that runs whenever no specific strategy produces records.
type Registry struct {
	strategies []Strategy
	fallback   Strategy
}

// NewRegistry builds a registry. fallback must not be nil; it is what
// keeps unknown sites from yielding nothing at all.
func NewRegistry(fallback Strategy, strategies ...Strategy) *Registry {
	reg := &Registry{fallback: fallback}
	for _, s := range strategies {
		if s == nil {
			continue
		}
		reg.strategies = append(reg.strategies, s)
	}
	return reg
}

// StrategyFor returns the first registered strategy matching host.
func (r *Registry) StrategyFor(host string) (Strategy, bool) {
	for _, s := range r.strategies {
		if s.Match(host) {
			return s, true
		}
	}
	return nil, false
}

// Fallback returns the generic strategy.
func (r *Registry) Fallback() Strategy { return r.fallback }

// DefaultRegistry wires up the known site strategies with the generic
// fallback using the given title length bounds.
func DefaultRegistry(minTitleRunes, maxTitleRunes int) *Registry {
	return NewRegistry(
		NewGenericStrategy(minTitleRunes, maxTitleRunes),
		NewSinaStrategy(),
		NewNeteaseStrategy(),
	)
}

// Extractor runs strategy dispatch and title deduplication.
type Extractor struct {
	reg *Registry
	log logger.Logger
	now func() time.Time
}

// New builds an Extractor over the given registry.
func New(reg *Registry, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Extractor{reg: reg, log: log, now: time.Now}
}

// Extract parses html fetched from sourceURL and returns deduplicated
// records. The specific strategy for the host runs first; the generic
// fallback runs only when the specific pass yields zero records. Parse
// failures yield an empty result, never an error: a broken page must
// not abort the rest of the crawl.
func (e *Extractor) Extract(html []byte, sourceURL string) []domain.Record {
	page, err := url.Parse(sourceURL)
	if err != nil {
		e.log.WarnObj("source url unparseable", "extract_bad_url", map[string]any{
			"url":   sourceURL,
			"error": err.Error(),
		})
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		e.log.WarnObj("html parse failed", "extract_parse_error", map[string]any{
			"url":   sourceURL,
			"error": err.Error(),
		})
		return nil
	}

	now := e.now()
	var records []domain.Record

	if s, ok := e.reg.StrategyFor(page.Hostname()); ok {
		records = s.Extract(doc, page, now)
		e.log.DebugObj("site strategy ran", "extract_site_pass", map[string]any{
			"strategy": s.ID(),
			"url":      sourceURL,
			"records":  len(records),
		})
	}

	if len(records) == 0 {
		records = e.reg.Fallback().Extract(doc, page, now)
		e.log.DebugObj("generic fallback ran", "extract_generic_pass", map[string]any{
			"url":     sourceURL,
			"records": len(records),
		})
	}

	set := domain.NewRecordSet()
	set.AddAll(records)
	return set.Records()
}

// resolveLink resolves a possibly relative href against the page URL.
// A malformed href returns an error so the caller can drop just that
// candidate.
func resolveLink(href string, page *url.URL) (string, error) {
	parsed, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	return page.ResolveReference(parsed).String(), nil
}
