// Package render formats headline records into the daily digest
// artifacts (Markdown, CSV).
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
)

// Markdown renders records into the daily digest document: one level-2
// heading per source in first-seen order, each followed by a two-column
// table. Cells are padded to display width so tables stay aligned for
// CJK titles. Returns ok=false for empty input; nothing should be
// written in that case.
func Markdown(records []domain.Record, now time.Time) (string, bool) {
	if len(records) == 0 {
		return "", false
	}

	grouped, order := groupBySource(records)

	var b strings.Builder
	fmt.Fprintf(&b, "# 每日新闻摘要（%s）\n", now.Format("2006-01-02"))

	for _, source := range order {
		fmt.Fprintf(&b, "\n## %s\n\n", source)
		b.WriteString(renderTable(grouped[source]))
	}

	fmt.Fprintf(&b, "\n生成时间：%s\n", now.Format("2006-01-02 15:04:05"))
	return b.String(), true
}

// groupBySource buckets records by source label, preserving first-seen
// source order and within-source insertion order.
func groupBySource(records []domain.Record) (map[string][]domain.Record, []string) {
	grouped := make(map[string][]domain.Record)
	var order []string
	for _, rec := range records {
		if _, seen := grouped[rec.Source]; !seen {
			order = append(order, rec.Source)
		}
		grouped[rec.Source] = append(grouped[rec.Source], rec)
	}
	return grouped, order
}

func renderTable(records []domain.Record) string {
	const (
		titleHeader = "标题"
		linkHeader  = "链接"
	)

	cells := make([][2]string, 0, len(records))
	titleWidth := runewidth.StringWidth(titleHeader)
	linkWidth := runewidth.StringWidth(linkHeader)

	for _, rec := range records {
		title := escapePipes(rec.Title)
		link := fmt.Sprintf("[链接](%s)", rec.Link)
		cells = append(cells, [2]string{title, link})

		if w := runewidth.StringWidth(title); w > titleWidth {
			titleWidth = w
		}
		if w := runewidth.StringWidth(link); w > linkWidth {
			linkWidth = w
		}
	}

	var b strings.Builder
	writeRow(&b, titleHeader, linkHeader, titleWidth, linkWidth)
	fmt.Fprintf(&b, "| %s | %s |\n", strings.Repeat("-", titleWidth), strings.Repeat("-", linkWidth))
	for _, row := range cells {
		writeRow(&b, row[0], row[1], titleWidth, linkWidth)
	}
	return b.String()
}

func writeRow(b *strings.Builder, title, link string, titleWidth, linkWidth int) {
	fmt.Fprintf(b, "| %s | %s |\n", pad(title, titleWidth), pad(link, linkWidth))
}

// pad right-pads s with spaces to the given display width.
func pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// escapePipes keeps literal pipes in titles from breaking table syntax.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
