package fetcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/meiri-hq/meiri-yaowen/pkg/httpclient"
)

type fakeResponse struct {
	status int
	body   []byte
}

func (r *fakeResponse) StatusCode() int { return r.status }
func (r *fakeResponse) Body() []byte    { return r.body }

type fakeClient struct {
	status  int
	body    []byte
	err     error
	headers map[string]string
}

func (c *fakeClient) Get(_ context.Context, _ string, headers map[string]string) (httpclient.Response, error) {
	c.headers = headers
	if c.err != nil {
		return nil, c.err
	}
	return &fakeResponse{status: c.status, body: c.body}, nil
}

func TestFetchReturnsBody(t *testing.T) {
	client := &fakeClient{status: 200, body: []byte("<html></html>")}
	f := New(client, nil, false, "")

	body, err := f.Fetch(context.Background(), "https://news.sina.com.cn/")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "<html></html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	client := &fakeClient{status: 200, body: []byte("ok")}
	f := New(client, nil, false, "")

	if _, err := f.Fetch(context.Background(), "https://news.163.com/"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	for _, key := range []string{"User-Agent", "Accept", "Accept-Language", "Connection", "Upgrade-Insecure-Requests"} {
		if client.headers[key] == "" {
			t.Errorf("header %s not sent", key)
		}
	}
	if got := client.headers["Accept-Language"]; got != "zh-CN,zh;q=0.9,en;q=0.8" {
		t.Errorf("Accept-Language = %q", got)
	}
}

func TestFetchNon2xxIsError(t *testing.T) {
	client := &fakeClient{status: 503, body: []byte("unavailable")}
	f := New(client, nil, false, "")

	_, err := f.Fetch(context.Background(), "https://news.sina.com.cn/")
	if err == nil {
		t.Fatal("Fetch succeeded on 503, want error")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fe.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", fe.StatusCode)
	}
}

func TestFetchTransportErrorWrapped(t *testing.T) {
	cause := errors.New("dial timeout")
	client := &fakeClient{err: cause}
	f := New(client, nil, false, "")

	_, err := f.Fetch(context.Background(), "https://news.sina.com.cn/")
	if err == nil {
		t.Fatal("Fetch succeeded, want error")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("StatusCode = %d for transport failure, want 0", fe.StatusCode)
	}
	if !errors.Is(err, cause) {
		t.Error("underlying cause not preserved in error chain")
	}
}

func TestFetchDebugDumpOverwrites(t *testing.T) {
	dumpPath := filepath.Join(t.TempDir(), "debug_html.html")
	client := &fakeClient{status: 200, body: []byte("first")}
	f := New(client, nil, true, dumpPath)

	if _, err := f.Fetch(context.Background(), "https://news.sina.com.cn/"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	client.body = []byte("second")
	if _, err := f.Fetch(context.Background(), "https://news.163.com/"); err != nil {
		t.Fatalf("Fetch (second): %v", err)
	}

	got, err := os.ReadFile(dumpPath)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("dump content = %q, want the latest fetch", got)
	}
}
