package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/metrics"
)

// CrawlOptions holds the reduced timeout policy for the internal crawl pass.
type CrawlOptions struct {
	MaxLinks          int
	PageCreateTimeout time.Duration
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	PacePerSecond     int
}

// Crawler repeats a lightweight analysis pass against a bounded set of
// same-origin links discovered on the parent page. Targets are visited
// sequentially to bound browser pressure from a single parent request, and
// each target's outcome is isolated: one failure never aborts the batch or
// the parent analysis.
type Crawler struct {
	session Session
	opts    CrawlOptions
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewCrawler returns a Crawler sharing the engine's session manager.
func NewCrawler(session Session, opts CrawlOptions, logger *slog.Logger) *Crawler {
	pace := opts.PacePerSecond
	if pace < 1 {
		pace = 1
	}
	return &Crawler{
		session: session,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(pace), 1),
		logger:  logger,
	}
}

// Crawl visits up to MaxLinks same-origin links. A missing browser session
// yields an empty result, never an error.
func (c *Crawler) Crawl(ctx context.Context, base *url.URL, links []model.Link) []model.CrawledPage {
	results := make([]model.CrawledPage, 0, c.opts.MaxLinks)

	targets := sameOriginTargets(base, links, c.opts.MaxLinks)
	if len(targets) == 0 {
		return results
	}

	if !c.session.Ready() {
		c.logger.Warn("browser session unavailable, skipping crawl", "base", base.String())
		return results
	}

	for _, link := range targets {
		if err := c.limiter.Wait(ctx); err != nil {
			break
		}
		page := c.visit(ctx, link)
		if page.Error == "" {
			metrics.CrawledPages.Inc()
		}
		results = append(results, page)
	}

	return results
}

// sameOriginTargets resolves each href against the base URL and keeps
// non-external links whose scheme+host match. Unparseable hrefs are
// excluded.
func sameOriginTargets(base *url.URL, links []model.Link, maxLinks int) []model.Link {
	var targets []model.Link
	for _, link := range links {
		if len(targets) >= maxLinks {
			break
		}
		if link.IsExternal {
			continue
		}
		ref, err := url.Parse(link.Href)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme == base.Scheme && strings.EqualFold(resolved.Host, base.Host) {
			link.Href = resolved.String()
			targets = append(targets, link)
		}
	}
	return targets
}

// visit runs the reduced pipeline against one crawl target. Any failure
// degrades into an error-stub entry with status 0.
func (c *Crawler) visit(ctx context.Context, link model.Link) model.CrawledPage {
	stub := func(cause string) model.CrawledPage {
		c.logger.Debug("crawl target failed", "url", link.Href, "error", cause)
		return model.CrawledPage{URL: link.Href, LinkText: link.Text, Error: cause, Status: 0}
	}

	acquireCtx, cancelAcquire := context.WithTimeout(ctx, c.opts.PageCreateTimeout)
	page, err := c.session.AcquirePage(acquireCtx)
	cancelAcquire()
	if err != nil {
		return stub(err.Error())
	}
	defer func() { _ = page.Close() }()

	tel := page.Instrument()

	start := time.Now()
	navCtx, cancelNav := context.WithTimeout(ctx, c.opts.NavigationTimeout)
	defer cancelNav()
	if err := page.Navigate(navCtx, link.Href); err != nil {
		return stub(err.Error())
	}
	loadTime := time.Since(start)

	if err := sleepCtx(ctx, c.opts.SettleDelay); err != nil {
		return stub(err.Error())
	}

	// Read after the settle window; the response event arrives on the
	// capture goroutine and may trail DOM-ready.
	status := tel.PrimaryStatus()
	if status < 200 || status >= 400 {
		return stub(fmt.Sprintf("HTTP error: %d", status))
	}

	var info crawlInfo
	if err := page.Eval(ctx, crawlInfoJS, &info); err != nil {
		return stub(err.Error())
	}

	screenshot := ""
	if shot, err := page.Screenshot(ctx); err == nil {
		screenshot = "data:image/png;base64," + base64.StdEncoding.EncodeToString(shot)
	}

	headers := tel.PrimaryHeaders()
	contentType := "unknown"
	for k, v := range headers {
		if strings.EqualFold(k, "content-type") {
			contentType = v
			break
		}
	}

	return model.CrawledPage{
		URL:         link.Href,
		LinkText:    link.Text,
		Status:      status,
		ContentType: contentType,
		LoadTimeMs:  loadTime.Milliseconds(),
		Title:       info.Title,
		Description: info.Description,
		H1Tags:      info.H1,
		WordCount:   info.WordCount,
		IsHTTPS:     strings.HasPrefix(link.Href, "https"),
		Screenshot:  screenshot,
	}
}
