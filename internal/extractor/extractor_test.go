package extractor

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func newTestExtractor() *Extractor {
	e := New(DefaultRegistry(10, 100), nil)
	e.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }
	return e
}

const sinaFixture = `<html><body>
<ul class="top_newslist">
  <li><a href="/article/one.html">国务院发布最新经济政策解读</a></li>
  <li><a href="https://news.sina.com.cn/article/two.html">全国多地迎来强降雨天气过程</a></li>
</ul>
<div class="hot-search">
  <li><a href="/hot/1.html">某热搜话题引发广泛讨论</a></li>
</div>
</body></html>`

func TestExtractSinaSpecificPasses(t *testing.T) {
	e := newTestExtractor()
	records := e.Extract([]byte(sinaFixture), "https://news.sina.com.cn/")

	if len(records) != 3 {
		t.Fatalf("Extract returned %d records, want 3", len(records))
	}

	for _, rec := range records {
		if !strings.HasPrefix(rec.Link, "https://news.sina.com.cn/") {
			t.Errorf("record %q link %q is not absolute against the page", rec.Title, rec.Link)
		}
		if rec.Summary == "通用爬取，无摘要" {
			t.Errorf("generic fallback marker appeared although the specific pass matched: %q", rec.Title)
		}
	}

	if records[0].Source != "新浪新闻" || records[0].Summary != "热门新闻" {
		t.Errorf("featured pass labels = (%q, %q), want (新浪新闻, 热门新闻)", records[0].Source, records[0].Summary)
	}
	if records[2].Source != "新浪微博热搜" || records[2].Summary != "热榜新闻，无摘要" {
		t.Errorf("hot-search pass labels = (%q, %q), want (新浪微博热搜, 热榜新闻，无摘要)", records[2].Source, records[2].Summary)
	}
}

func TestExtractNetease(t *testing.T) {
	e := newTestExtractor()
	html := `<html><body>
<div class="news_title"><h3><a href="/news/a.html">网易头条新闻标题示例一</a></h3></div>
<div class="news_title"><h3><a href="/news/b.html">网易头条新闻标题示例二</a></h3></div>
</body></html>`

	records := e.Extract([]byte(html), "https://news.163.com/index.html")
	if len(records) != 2 {
		t.Fatalf("Extract returned %d records, want 2", len(records))
	}
	for _, rec := range records {
		if rec.Source != "网易新闻" || rec.Summary != "网易新闻，无摘要" {
			t.Errorf("labels = (%q, %q), want (网易新闻, 网易新闻，无摘要)", rec.Source, rec.Summary)
		}
	}
	if records[0].Link != "https://news.163.com/news/a.html" {
		t.Errorf("relative href not resolved, got %q", records[0].Link)
	}
}

func TestExtractFallbackWhenSpecificPassEmpty(t *testing.T) {
	e := newTestExtractor()
	// Sina host, but nothing matches the site selectors.
	html := `<html><body>
<p><a href="/story/x.html">这是一条足够长的新闻标题文字</a></p>
</body></html>`

	records := e.Extract([]byte(html), "https://news.sina.com.cn/")
	if len(records) != 1 {
		t.Fatalf("Extract returned %d records, want 1 from the generic fallback", len(records))
	}
	if records[0].Summary != "通用爬取，无摘要" {
		t.Errorf("Summary = %q, want 通用爬取，无摘要", records[0].Summary)
	}
	if records[0].Source != "news.sina.com.cn" {
		t.Errorf("Source = %q, want the page hostname", records[0].Source)
	}
}

func TestGenericTitleLengthBoundsExclusive(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		runes int
		want  bool
	}{
		{10, false},
		{11, true},
		{99, true},
		{100, false},
	}

	for _, tt := range tests {
		title := strings.Repeat("字", tt.runes)
		html := fmt.Sprintf(`<html><body><a href="/t.html">%s</a></body></html>`, title)
		records := e.Extract([]byte(html), "https://unknown.example.com/")
		got := len(records) == 1
		if got != tt.want {
			t.Errorf("anchor with %d runes: included = %v, want %v", tt.runes, got, tt.want)
		}
	}
}

func TestGenericRejectsSchemes(t *testing.T) {
	e := newTestExtractor()

	for _, href := range []string{"javascript:void(0)", "JAVASCRIPT:void(0)", "mailto:a@b.example", "tel:+8610000000"} {
		html := fmt.Sprintf(`<html><body><a href="%s">这是一条足够长的新闻标题文字</a></body></html>`, href)
		records := e.Extract([]byte(html), "https://unknown.example.com/")
		if len(records) != 0 {
			t.Errorf("href %q should be rejected, got %d records", href, len(records))
		}
	}
}

func TestGenericDropsMalformedHref(t *testing.T) {
	e := newTestExtractor()
	html := `<html><body>
<a href="http://bad host/x">这一条链接格式错误应被丢弃</a>
<a href="/ok.html">这一条链接格式正确应被保留</a>
</body></html>`

	records := e.Extract([]byte(html), "https://unknown.example.com/")
	if len(records) != 1 {
		t.Fatalf("Extract returned %d records, want 1 (malformed href dropped silently)", len(records))
	}
	if records[0].Link != "https://unknown.example.com/ok.html" {
		t.Errorf("surviving record link = %q", records[0].Link)
	}
}

func TestExtractDeduplicatesByTitleLastWins(t *testing.T) {
	e := newTestExtractor()
	html := `<html><body><ul class="top_newslist">
<li><a href="/first.html">同一条新闻标题出现两次</a></li>
<li><a href="/second.html">同一条新闻标题出现两次</a></li>
</ul></body></html>`

	records := e.Extract([]byte(html), "https://news.sina.com.cn/")
	if len(records) != 1 {
		t.Fatalf("Extract returned %d records, want 1", len(records))
	}
	if records[0].Link != "https://news.sina.com.cn/second.html" {
		t.Errorf("dedup kept link %q, want the later element's link", records[0].Link)
	}
}

func TestExtractBadSourceURLYieldsNothing(t *testing.T) {
	e := newTestExtractor()
	records := e.Extract([]byte("<html></html>"), "http://bad host/")
	if records != nil {
		t.Errorf("Extract with unparseable source URL = %v, want nil", records)
	}
}

func TestExtractSetsCrawlTime(t *testing.T) {
	e := newTestExtractor()
	records := e.Extract([]byte(sinaFixture), "https://news.sina.com.cn/")
	want := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for _, rec := range records {
		if !rec.CrawlTime.Equal(want) {
			t.Errorf("record %q CrawlTime = %v, want %v", rec.Title, rec.CrawlTime, want)
		}
	}
}
