package domain

import "time"

// Domain contains core models shared by the pipeline stages.

// Record is one extracted headline with its link, summary placeholder,
// source label and crawl timestamp. Immutable once built.
type Record struct {
	Title     string
	Link      string
	Summary   string
	Source    string
	CrawlTime time.Time
}

// DigestEvent describes a published daily digest. It is the payload
// delivered to configured notification sinks.
type DigestEvent struct {
	Date        string   `json:"date"`
	Path        string   `json:"path"`
	RecordCount int      `json:"record_count"`
	Sources     []string `json:"sources"`
	Committed   bool     `json:"committed"`
	GeneratedAt string   `json:"generated_at"`
}
