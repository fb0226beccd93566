package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestArchiveRoundTrip(t *testing.T) {
	store := openTestStore(t)
	day := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	records := []domain.Record{
		{Title: "标题一", Link: "https://a.example/1", Summary: "热门新闻", Source: "新浪新闻", CrawlTime: day},
		{Title: "标题二", Link: "https://a.example/2", Summary: "网易新闻，无摘要", Source: "网易新闻", CrawlTime: day},
	}
	if err := store.SaveDay(day, records); err != nil {
		t.Fatalf("SaveDay: %v", err)
	}

	got, err := store.Day(day)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Day returned %d records, want 2", len(got))
	}

	byTitle := make(map[string]domain.Record, len(got))
	for _, rec := range got {
		byTitle[rec.Title] = rec
	}
	if byTitle["标题一"].Link != "https://a.example/1" {
		t.Errorf("archived record lost its link: %+v", byTitle["标题一"])
	}
}

func TestArchiveSameDayReplaces(t *testing.T) {
	store := openTestStore(t)
	day := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	first := []domain.Record{
		{Title: "早间版本", Link: "https://a.example/1", Source: "新浪新闻", CrawlTime: day},
		{Title: "会被覆盖", Link: "https://a.example/2", Source: "新浪新闻", CrawlTime: day},
	}
	second := []domain.Record{
		{Title: "晚间版本", Link: "https://a.example/3", Source: "新浪新闻", CrawlTime: day},
	}

	if err := store.SaveDay(day, first); err != nil {
		t.Fatalf("SaveDay (first): %v", err)
	}
	if err := store.SaveDay(day, second); err != nil {
		t.Fatalf("SaveDay (second): %v", err)
	}

	got, err := store.Day(day)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(got) != 1 || got[0].Title != "晚间版本" {
		t.Errorf("same-day rerun did not replace the archive, got %+v", got)
	}
}

func TestArchiveMissingDayIsEmpty(t *testing.T) {
	store := openTestStore(t)
	got, err := store.Day(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Day for unarchived date returned %d records, want 0", len(got))
	}
}

func TestArchiveDays(t *testing.T) {
	store := openTestStore(t)
	rec := []domain.Record{{Title: "标题", Link: "https://a.example/1", Source: "s", CrawlTime: time.Now()}}

	for _, day := range []string{"2025-06-02", "2025-06-01"} {
		d, _ := time.Parse("2006-01-02", day)
		if err := store.SaveDay(d, rec); err != nil {
			t.Fatalf("SaveDay(%s): %v", day, err)
		}
	}

	days, err := store.Days()
	if err != nil {
		t.Fatalf("Days: %v", err)
	}
	want := []string{"20250601", "20250602"}
	if len(days) != 2 || days[0] != want[0] || days[1] != want[1] {
		t.Errorf("Days = %v, want %v (ascending)", days, want)
	}
}
