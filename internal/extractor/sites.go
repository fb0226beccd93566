package extractor

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
)

// Source labels and summary placeholders carried by site-specific
// records. The placeholders mark which pass produced a record.
const (
	sourceSinaNews = "新浪新闻"
	sourceSinaHot  = "新浪微博热搜"
	sourceNetease  = "网易新闻"

	summarySinaNews = "热门新闻"
	summarySinaHot  = "热榜新闻，无摘要"
	summaryNetease  = "网易新闻，无摘要"
)

// anchorPass is one DOM-query sweep over anchor elements. A candidate
// is accepted only when both a non-empty trimmed title and an href are
// present.
type anchorPass struct {
	selector string
	source   string
	summary  string
}

func (p anchorPass) run(doc *goquery.Document, page *url.URL, now time.Time) []domain.Record {
	var records []domain.Record
	doc.Find(p.selector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		href, ok := sel.Attr("href")
		if title == "" || !ok {
			return
		}

		link, err := resolveLink(strings.TrimSpace(href), page)
		if err != nil {
			return
		}

		records = append(records, domain.Record{
			Title:     title,
			Link:      link,
			Summary:   p.summary,
			Source:    p.source,
			CrawlTime: now,
		})
	})
	return records
}

// siteStrategy matches hosts by substring and runs its passes in order,
// concatenating whatever each pass finds.
type siteStrategy struct {
	id            string
	hostSubstring string
	passes        []anchorPass
}

func (s *siteStrategy) ID() string { return s.id }

func (s *siteStrategy) Match(host string) bool {
	return strings.Contains(host, s.hostSubstring)
}

func (s *siteStrategy) Extract(doc *goquery.Document, page *url.URL, now time.Time) []domain.Record {
	var records []domain.Record
	for _, p := range s.passes {
		records = append(records, p.run(doc, page, now)...)
	}
	return records
}

// NewSinaStrategy extracts the featured-story cards and the hot-search
// list from the Sina news portal, tagging each pass with its own source
// label.
func NewSinaStrategy() Strategy {
	return &siteStrategy{
		id:            "sina",
		hostSubstring: "sina.com.cn",
		passes: []anchorPass{
			{
				selector: ".top_newslist li a, div.news-item h2 a",
				source:   sourceSinaNews,
				summary:  summarySinaNews,
			},
			{
				selector: "div.hot-search li a, ul.weibo-hot li a",
				source:   sourceSinaHot,
				summary:  summarySinaHot,
			},
		},
	}
}

// NewNeteaseStrategy extracts headline rows from the NetEase news
// portal.
func NewNeteaseStrategy() Strategy {
	return &siteStrategy{
		id:            "netease",
		hostSubstring: "163.com",
		passes: []anchorPass{
			{
				selector: "div.news_title h3 a, ul.top_news_ul li a",
				source:   sourceNetease,
				summary:  summaryNetease,
			},
		},
	}
}
