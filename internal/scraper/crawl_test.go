package scraper

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/metrics"
)

func testCrawlOptions() CrawlOptions {
	return CrawlOptions{
		MaxLinks:          5,
		PageCreateTimeout: time.Second,
		NavigationTimeout: time.Second,
		SettleDelay:       0,
		PacePerSecond:     1000,
	}
}

func TestSameOriginTargets(t *testing.T) {
	base, _ := url.Parse("https://example.com/page")

	links := []model.Link{
		{Text: "Relative", Href: "/about"},
		{Text: "Same host", Href: "https://example.com/contact"},
		{Text: "External flagged", Href: "https://other.com/x", IsExternal: true},
		{Text: "Other host", Href: "https://evil.com/y"},
		{Text: "Scheme downgrade", Href: "http://example.com/insecure"},
		{Text: "Case host", Href: "https://EXAMPLE.com/upper"},
		{Text: "Unparseable", Href: "https://example.com/%zz"},
	}

	targets := sameOriginTargets(base, links, 10)

	want := []string{
		"https://example.com/about",
		"https://example.com/contact",
		"https://EXAMPLE.com/upper",
	}
	if len(targets) != len(want) {
		t.Fatalf("targets = %d, want %d: %v", len(targets), len(want), targets)
	}
	for i, w := range want {
		if targets[i].Href != w {
			t.Errorf("targets[%d].Href = %q, want %q", i, targets[i].Href, w)
		}
	}
}

func TestSameOriginTargets_Cap(t *testing.T) {
	base, _ := url.Parse("https://example.com")

	links := make([]model.Link, 8)
	for i := range links {
		links[i] = model.Link{Text: "L", Href: "/p"}
	}

	if got := len(sameOriginTargets(base, links, 5)); got != 5 {
		t.Errorf("targets = %d, want capped at 5", got)
	}
	if got := len(sameOriginTargets(base, links, 0)); got != 0 {
		t.Errorf("targets = %d, want 0 when crawling is disabled", got)
	}
}

func TestCrawler_Crawl_SessionNotReady(t *testing.T) {
	session := &fakeSession{ready: false}
	c := NewCrawler(session, testCrawlOptions(), testLogger())

	base, _ := url.Parse("https://example.com")
	results := c.Crawl(context.Background(), base, []model.Link{{Text: "A", Href: "/a"}})

	if results == nil {
		t.Fatal("results = nil, want empty slice")
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
	if session.acquireCalls != 0 {
		t.Errorf("acquireCalls = %d, want 0", session.acquireCalls)
	}
}

func TestCrawler_Crawl_NoTargets(t *testing.T) {
	session := &fakeSession{ready: true}
	c := NewCrawler(session, testCrawlOptions(), testLogger())

	base, _ := url.Parse("https://example.com")
	links := []model.Link{{Text: "Ext", Href: "https://other.com/x", IsExternal: true}}

	results := c.Crawl(context.Background(), base, links)
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
}

func TestCrawler_Crawl_Success(t *testing.T) {
	page := newFakePage(200, map[string]string{"Content-Type": "text/html; charset=utf-8"},
		map[string]any{crawlInfoJS: crawlInfo{
			Title:       "Sub Page",
			Description: "desc",
			H1:          []string{"Heading"},
			WordCount:   42,
		}})
	session := &fakeSession{pages: []*fakePage{page}, ready: true}
	c := NewCrawler(session, testCrawlOptions(), testLogger())

	base, _ := url.Parse("https://example.com")
	results := c.Crawl(context.Background(), base, []model.Link{{Text: "Sub", Href: "/sub"}})

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	got := results[0]
	if got.Error != "" {
		t.Fatalf("Error = %q, want none", got.Error)
	}
	if got.URL != "https://example.com/sub" {
		t.Errorf("URL = %q, want the resolved target", got.URL)
	}
	if got.LinkText != "Sub" {
		t.Errorf("LinkText = %q, want Sub", got.LinkText)
	}
	if got.Status != 200 {
		t.Errorf("Status = %d, want 200", got.Status)
	}
	if got.ContentType != "text/html; charset=utf-8" {
		t.Errorf("ContentType = %q", got.ContentType)
	}
	if got.Title != "Sub Page" || got.WordCount != 42 {
		t.Errorf("page info = %+v", got)
	}
	if len(got.H1Tags) != 1 || got.H1Tags[0] != "Heading" {
		t.Errorf("H1Tags = %v", got.H1Tags)
	}
	if !got.IsHTTPS {
		t.Error("IsHTTPS = false, want true")
	}
	if got.LoadTimeMs < 0 {
		t.Errorf("LoadTimeMs = %d, want >= 0", got.LoadTimeMs)
	}
	if page.closed != 1 {
		t.Errorf("page closed %d times, want exactly once", page.closed)
	}
}

func TestCrawler_Crawl_LateResponseNotStubbed(t *testing.T) {
	// A healthy target whose response event trails DOM-ready must not be
	// misread as status 0.
	page := newFakePage(200, map[string]string{"Content-Type": "text/html"},
		map[string]any{crawlInfoJS: crawlInfo{Title: "Slow but fine"}})
	page.recordDelay = 10 * time.Millisecond
	session := &fakeSession{pages: []*fakePage{page}, ready: true}

	opts := testCrawlOptions()
	opts.SettleDelay = 100 * time.Millisecond
	c := NewCrawler(session, opts, testLogger())

	base, _ := url.Parse("https://example.com")
	results := c.Crawl(context.Background(), base, []model.Link{{Text: "Sub", Href: "/sub"}})

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Error != "" {
		t.Fatalf("Error = %q, want a clean visit", results[0].Error)
	}
	if results[0].Status != 200 || results[0].Title != "Slow but fine" {
		t.Errorf("result = %+v, want status 200 with the extracted title", results[0])
	}
}

func TestCrawler_Crawl_MetricsCountCompletedVisitsOnly(t *testing.T) {
	pageA := newFakePage(200, nil, map[string]any{crawlInfoJS: crawlInfo{Title: "A"}})
	session := &fakeSession{pages: []*fakePage{pageA, nil}, ready: true}
	c := NewCrawler(session, testCrawlOptions(), testLogger())

	before := testutil.ToFloat64(metrics.CrawledPages)

	base, _ := url.Parse("https://example.com")
	results := c.Crawl(context.Background(), base, []model.Link{
		{Text: "A", Href: "/a"},
		{Text: "B", Href: "/b"},
	})
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	if got := testutil.ToFloat64(metrics.CrawledPages) - before; got != 1 {
		t.Errorf("crawled pages delta = %v, want 1 (stubs are not visits)", got)
	}
}

func TestCrawler_Crawl_HTTPErrorStub(t *testing.T) {
	page := newFakePage(404, nil, nil)
	session := &fakeSession{pages: []*fakePage{page}, ready: true}
	c := NewCrawler(session, testCrawlOptions(), testLogger())

	base, _ := url.Parse("https://example.com")
	results := c.Crawl(context.Background(), base, []model.Link{{Text: "Gone", Href: "/gone"}})

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	got := results[0]
	if got.Status != 0 {
		t.Errorf("Status = %d, want 0 on a stub", got.Status)
	}
	if got.Error != "HTTP error: 404" {
		t.Errorf("Error = %q, want HTTP error: 404", got.Error)
	}
	if got.URL != "https://example.com/gone" || got.LinkText != "Gone" {
		t.Errorf("stub identity = %q / %q", got.URL, got.LinkText)
	}
	if page.closed != 1 {
		t.Errorf("page closed %d times, want exactly once", page.closed)
	}
}

func TestCrawler_Crawl_FailureIsolation(t *testing.T) {
	// The middle acquisition fails; its neighbors still complete.
	pageA := newFakePage(200, nil, map[string]any{crawlInfoJS: crawlInfo{Title: "A"}})
	pageC := newFakePage(200, nil, map[string]any{crawlInfoJS: crawlInfo{Title: "C"}})
	session := &fakeSession{pages: []*fakePage{pageA, nil, pageC}, ready: true}
	c := NewCrawler(session, testCrawlOptions(), testLogger())

	base, _ := url.Parse("https://example.com")
	links := []model.Link{
		{Text: "A", Href: "/a"},
		{Text: "B", Href: "/b"},
		{Text: "C", Href: "/c"},
	}

	results := c.Crawl(context.Background(), base, links)
	if len(results) != 3 {
		t.Fatalf("results = %d, want all 3 targets accounted for", len(results))
	}
	if results[0].Error != "" || results[0].Title != "A" {
		t.Errorf("results[0] = %+v, want a clean visit", results[0])
	}
	if results[1].Error == "" || results[1].Status != 0 {
		t.Errorf("results[1] = %+v, want an error stub", results[1])
	}
	if results[2].Error != "" || results[2].Title != "C" {
		t.Errorf("results[2] = %+v, want a clean visit", results[2])
	}
}

func TestCrawler_Crawl_NavigationErrorStub(t *testing.T) {
	page := newFakePage(0, nil, nil)
	page.navErr = context.DeadlineExceeded
	session := &fakeSession{pages: []*fakePage{page}, ready: true}
	c := NewCrawler(session, testCrawlOptions(), testLogger())

	base, _ := url.Parse("https://example.com")
	results := c.Crawl(context.Background(), base, []model.Link{{Text: "Slow", Href: "/slow"}})

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Error == "" || results[0].Status != 0 {
		t.Errorf("results[0] = %+v, want an error stub", results[0])
	}
	if page.closed != 1 {
		t.Errorf("page closed %d times, want exactly once", page.closed)
	}
}
