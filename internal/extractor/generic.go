package extractor

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
)

const summaryGeneric = "通用爬取，无摘要"

// rejectedSchemes are href prefixes the generic pass never follows.
var rejectedSchemes = []string{"javascript:", "mailto:", "tel:"}

// genericStrategy scans every anchor on the page. It keeps anchors
// whose trimmed text is strictly between the rune bounds, exclusive on
// both ends. The record source is the page hostname.
type genericStrategy struct {
	minRunes int
	maxRunes int
}

// NewGenericStrategy builds the fallback strategy with the given title
// length bounds.
func NewGenericStrategy(minRunes, maxRunes int) Strategy {
	return &genericStrategy{minRunes: minRunes, maxRunes: maxRunes}
}

func (g *genericStrategy) ID() string { return "generic" }

// Match always reports false: the generic strategy is never selected as
// a site strategy, it only runs as the registry fallback.
func (g *genericStrategy) Match(string) bool { return false }

func (g *genericStrategy) Extract(doc *goquery.Document, page *url.URL, now time.Time) []domain.Record {
	var records []domain.Record
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		n := utf8.RuneCountInString(title)
		if n <= g.minRunes || n >= g.maxRunes {
			return
		}

		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if hasRejectedScheme(href) {
			return
		}

		link, err := resolveLink(href, page)
		if err != nil {
			// Malformed href drops the candidate, not the pass.
			return
		}

		records = append(records, domain.Record{
			Title:     title,
			Link:      link,
			Summary:   summaryGeneric,
			Source:    page.Hostname(),
			CrawlTime: now,
		})
	})
	return records
}

func hasRejectedScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, scheme := range rejectedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
