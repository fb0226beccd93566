package render

import (
	"strings"
	"testing"
	"time"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
)

func TestCSVEmptyInput(t *testing.T) {
	text, ok := CSV(nil)
	if ok {
		t.Fatal("CSV(nil) ok = true, want false")
	}
	if text != "" {
		t.Errorf("CSV(nil) text = %q, want empty", text)
	}
}

func TestCSVBOMAndHeader(t *testing.T) {
	records := []domain.Record{{
		Title:     "某一条新闻标题",
		Link:      "https://a.example/1",
		Summary:   "热门新闻",
		Source:    "新浪新闻",
		CrawlTime: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}}

	text, ok := CSV(records)
	if !ok {
		t.Fatal("CSV ok = false, want true")
	}
	if !strings.HasPrefix(text, "\uFEFF") {
		t.Error("CSV output is missing the UTF-8 BOM prefix")
	}
	lines := strings.Split(strings.TrimPrefix(text, "\uFEFF"), "\n")
	if lines[0] != "标题,链接,摘要,爬取时间,来源" {
		t.Errorf("header row = %q", lines[0])
	}
}

func TestCSVEscaping(t *testing.T) {
	records := []domain.Record{{
		Title:     `He said "hi", ok`,
		Link:      "https://a.example/1",
		Summary:   "summary, with comma",
		Source:    "新浪新闻",
		CrawlTime: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}}

	text, ok := CSV(records)
	if !ok {
		t.Fatal("CSV ok = false, want true")
	}

	if !strings.Contains(text, `"He said ""hi""，ok"`) {
		t.Errorf("title escaping wrong, output:\n%s", text)
	}
	if !strings.Contains(text, `"summary，with comma"`) {
		t.Errorf("summary comma not replaced, output:\n%s", text)
	}
	// The link field keeps its literal content, only quoted.
	if !strings.Contains(text, `"https://a.example/1"`) {
		t.Errorf("link field not plainly quoted, output:\n%s", text)
	}
}

func TestCSVEveryFieldQuoted(t *testing.T) {
	records := []domain.Record{{
		Title:     "普通标题",
		Link:      "https://a.example/1",
		Summary:   "无摘要",
		Source:    "来源",
		CrawlTime: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}}

	text, _ := CSV(records)
	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(text, "\uFEFF"), "\n"), "\n")
	row := lines[len(lines)-1]
	for i, field := range strings.Split(row, ",") {
		if !strings.HasPrefix(field, `"`) || !strings.HasSuffix(field, `"`) {
			t.Errorf("field %d not wrapped in quotes: %q", i, field)
		}
	}
}
