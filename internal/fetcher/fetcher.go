// Package fetcher retrieves raw HTML from target sites.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/meiri-hq/meiri-yaowen/internal/logger"
	"github.com/meiri-hq/meiri-yaowen/pkg/httpclient"
)

// browserHeaders is the fixed header set sent with every request. The
// Accept-Language is tuned for Chinese portals.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "zh-CN,zh;q=0.9,en;q=0.8",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// FetchError reports a failed page fetch. StatusCode is zero for
// transport-level failures (timeout, DNS, TLS).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher issues one GET per target and returns the raw HTML. It never
// retries; an error means that target contributes nothing to the run.
type Fetcher struct {
	client    httpclient.Client
	log       logger.Logger
	debugDump bool
	dumpPath  string
}

// New builds a Fetcher around the given HTTP client. When debugDump is
// set, every fetched body is written to dumpPath, overwriting the
// previous dump; that is a single-instance debugging aid, not safe for
// concurrent runs.
func New(client httpclient.Client, log logger.Logger, debugDump bool, dumpPath string) *Fetcher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Fetcher{
		client:    client,
		log:       log,
		debugDump: debugDump,
		dumpPath:  dumpPath,
	}
}

// Fetch performs a single GET against url and returns the body. Non-2xx
// responses are errors, same as transport failures.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.Get(ctx, url, browserHeaders)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, &FetchError{URL: url, StatusCode: status, Err: fmt.Errorf("body: %s", bodySnippet(resp.Body()))}
	}

	body := resp.Body()
	f.log.DebugObj("page fetched", "fetch_ok", map[string]any{
		"url":   url,
		"bytes": len(body),
	})

	if f.debugDump && f.dumpPath != "" {
		if err := os.WriteFile(f.dumpPath, body, 0o644); err != nil {
			f.log.WarnObj("debug dump failed", "debug_dump_error", map[string]any{
				"path":  f.dumpPath,
				"error": err.Error(),
			})
		}
	}

	return body, nil
}

// bodySnippet returns a truncated snippet of the response body for error
// messages.
func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
