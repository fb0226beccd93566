package render

import (
	"fmt"
	"strings"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
)

// utf8BOM keeps spreadsheet tools from misreading the Chinese headers.
const utf8BOM = "\uFEFF"

const csvHeader = "标题,链接,摘要,爬取时间,来源"

// CSV renders records as a BOM-prefixed CSV document. Every field is
// wrapped in double quotes; embedded quotes are doubled. Literal commas
// in the free-text fields (title, summary) are replaced with a
// full-width comma so naive consumers cannot split the row wrongly;
// link, time and source are left as-is apart from quoting. Returns
// ok=false for empty input.
//
// encoding/csv quotes only fields that need it, so the writer here
// does its own quoting to keep every field quoted.
func CSV(records []domain.Record) (string, bool) {
	if len(records) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(utf8BOM)
	b.WriteString(csvHeader)
	b.WriteString("\n")

	for _, rec := range records {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s\n",
			quoteFreeText(rec.Title),
			quote(rec.Link),
			quoteFreeText(rec.Summary),
			quote(rec.CrawlTime.Format("2006-01-02T15:04:05Z07:00")),
			quote(rec.Source),
		)
	}
	return b.String(), true
}

// quote doubles embedded quotes and wraps the field.
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// quoteFreeText additionally swaps literal commas for full-width ones.
// A space following the comma belongs to the Western punctuation and is
// absorbed by the full-width replacement.
func quoteFreeText(field string) string {
	field = strings.ReplaceAll(field, ", ", "，")
	field = strings.ReplaceAll(field, ",", "，")
	return quote(field)
}
