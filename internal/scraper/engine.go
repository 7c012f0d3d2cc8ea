// Package scraper drives the headless browser through one full page
// analysis: navigation, telemetry capture, DOM extraction, analytics,
// security assessment, and the bounded internal crawl pass.
package scraper

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/analytics"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/assess"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/browser"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/errs"
)

// Session defines how the engine obtains page contexts.
type Session interface {
	AcquirePage(ctx context.Context) (browser.Page, error)
	Ready() bool
}

// state tracks the analysis run through its lifecycle. Failed is reachable
// from every state before done.
type state int

const (
	stateIdle state = iota
	statePageCreated
	stateNavigating
	stateLoaded
	stateExtracting
	stateScreenshotCaptured
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case statePageCreated:
		return "page_created"
	case stateNavigating:
		return "navigating"
	case stateLoaded:
		return "loaded"
	case stateExtracting:
		return "extracting"
	case stateScreenshotCaptured:
		return "screenshot_captured"
	case stateDone:
		return "done"
	default:
		return "failed"
	}
}

// Options holds the engine's timeout policy.
type Options struct {
	PageCreateTimeout time.Duration
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	Crawl             CrawlOptions
}

// Engine orchestrates one page analysis end to end.
type Engine struct {
	session   Session
	analytics *analytics.Analyzer
	assessor  *assess.Assessor
	crawler   *Crawler
	opts      Options
	logger    *slog.Logger
}

// NewEngine returns an Engine backed by the given session manager.
func NewEngine(session Session, an *analytics.Analyzer, as *assess.Assessor, opts Options, logger *slog.Logger) *Engine {
	return &Engine{
		session:   session,
		analytics: an,
		assessor:  as,
		crawler:   NewCrawler(session, opts.Crawl, logger),
		opts:      opts,
		logger:    logger,
	}
}

// Analyze loads the URL in a fresh page context, captures telemetry,
// extracts the DOM snapshot, derives analytics and the security report,
// optionally crawls same-origin links, and assembles the immutable result.
func (e *Engine) Analyze(ctx context.Context, targetURL string) (*model.PageAnalysisResult, error) {
	start := time.Now()

	parsed, err := parseTargetURL(targetURL)
	if err != nil {
		return nil, err
	}

	st := stateIdle
	fail := func(kind errs.Kind, status int, msg string, cause error) error {
		e.logger.Debug("analysis failed", "url", targetURL, "state", st.String(), "kind", kind.String())
		st = stateFailed
		return &errs.AppError{Kind: kind, UpstreamStatus: status, Message: msg, Cause: cause}
	}

	acquireCtx, cancelAcquire := context.WithTimeout(ctx, e.opts.PageCreateTimeout)
	page, err := e.session.AcquirePage(acquireCtx)
	cancelAcquire()
	if err != nil {
		st = stateFailed
		return nil, err
	}
	st = statePageCreated

	// The page context is closed exactly once, on every exit path.
	defer func() { _ = page.Close() }()

	tel := page.Instrument()

	st = stateNavigating
	navCtx, cancelNav := context.WithTimeout(ctx, e.opts.NavigationTimeout)
	defer cancelNav()
	if err := page.Navigate(navCtx, targetURL); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return nil, fail(errs.NavigationTimeout, 0,
				"The page took too long to load.", err)
		}
		return nil, fail(errs.NavigationFailed, 0,
			"The provided URL could not be loaded. Check the address.", err)
	}

	st = stateLoaded

	// Fixed settle delay: lets deferred and async DOM mutations land before
	// the snapshot. A latency/completeness trade-off, not a guarantee.
	if err := sleepCtx(ctx, e.opts.SettleDelay); err != nil {
		return nil, fail(errs.NavigationTimeout, 0, "Analysis was cancelled.", err)
	}

	// The status is read only after the settle window: the response event is
	// delivered on the capture goroutine and may trail DOM-ready.
	if status := tel.PrimaryStatus(); status != 0 && (status < 200 || status >= 400) {
		return nil, fail(errs.NavigationFailed, status,
			"The provided URL returned an error status.", nil)
	}

	st = stateExtracting
	var content ExtractedContent
	if err := page.Eval(ctx, extractionJS, &content); err != nil {
		return nil, fail(errs.ExtractionFailed, 0,
			"Failed to extract content from the rendered page.", err)
	}

	// Best-effort captures: their absence degrades the result, it does not
	// fail the analysis.
	var perf model.PerformanceSample
	if err := page.Eval(ctx, performanceJS, &perf); err != nil {
		e.logger.Debug("performance sample failed", "url", targetURL, "error", err)
	}
	localStorage := map[string]string{}
	sessionStorage := map[string]string{}
	_ = page.Eval(ctx, localStorageJS, &localStorage)
	_ = page.Eval(ctx, sessionStorageJS, &sessionStorage)
	cookies, _ := page.Cookies()

	screenshot := ""
	if shot, err := page.Screenshot(ctx); err != nil {
		// Degrade rather than abort; the omission is surfaced as a
		// diagnostic event alongside the page's own console output.
		tel.AddConsole(model.ConsoleEvent{
			Level:   "warning",
			Message: "internal: screenshot capture failed: " + err.Error(),
		})
		e.logger.Warn("screenshot capture failed", "url", targetURL, "error", err)
	} else {
		screenshot = "data:image/png;base64," + base64.StdEncoding.EncodeToString(shot)
		st = stateScreenshotCaptured
	}

	crawled := e.crawler.Crawl(ctx, parsed, content.Links)

	result := e.assemble(targetURL, parsed, &content, tel, perf, cookies,
		localStorage, sessionStorage, screenshot, crawled, time.Since(start))
	st = stateDone
	e.logger.Debug("analysis complete", "url", targetURL, "state", st.String())
	return result, nil
}

// parseTargetURL rejects anything but an absolute http(s) URL before any
// browser interaction happens.
func parseTargetURL(targetURL string) (*url.URL, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
			Cause:   err,
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Only http and https URLs are supported.",
		}
	}
	return parsed, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// assemble performs the purely structural merge into the final result. No
// further computation happens after this point and the result is never
// mutated again.
func (e *Engine) assemble(
	targetURL string,
	parsed *url.URL,
	content *ExtractedContent,
	tel *browser.Telemetry,
	perf model.PerformanceSample,
	cookies []model.Cookie,
	localStorage, sessionStorage map[string]string,
	screenshot string,
	crawled []model.CrawledPage,
	elapsed time.Duration,
) *model.PageAnalysisResult {
	wordCount := analytics.CountWords(content.TextContent)

	frequency := make(map[string]int)
	for _, wc := range e.analytics.WordFrequency(content.TextContent) {
		frequency[wc.Word] = wc.Count
	}

	network := tel.Network()
	headers := tel.PrimaryHeaders()
	if headers == nil {
		headers = map[string]string{}
	}

	return &model.PageAnalysisResult{
		URL:         targetURL,
		Title:       content.Title,
		Description: content.Description,
		Headings:    content.Headings,
		Links:       content.Links,
		Images:      content.Images,
		MetaTags:    content.MetaTags,
		Screenshot:  screenshot,

		WordCount:          wordCount,
		ResponseTimeMs:     elapsed.Milliseconds(),
		TextContent:        content.TextContent,
		WordFrequency:      frequency,
		ReadingTimeMinutes: e.analytics.ReadingTime(wordCount),
		ReadabilityScore:   e.analytics.ReadabilityScore(content.TextContent),
		Language:           e.analytics.DetectLanguage(content.TextContent),
		SocialMediaLinks:   e.analytics.SocialLinks(content.Links),
		PageSizeKb:         float64(len(content.HTMLContent)) / 1024,
		RenderedHTML:       content.HTMLContent,

		NetworkResources: network,
		ResponseHeaders:  headers,
		ConsoleLogs:      tel.Console(),
		SecurityReport:   e.assessor.Assess(parsed, headers, content.HTMLContent, network),

		Forms:          content.Forms,
		Scripts:        content.Scripts,
		Stylesheets:    content.Stylesheets,
		Iframes:        content.Iframes,
		InputFields:    content.InputFields,
		Buttons:        content.Buttons,
		Technologies:   content.Technologies,
		StructuredData: content.StructuredData,
		Cookies:        cookies,
		LocalStorage:   localStorage,
		SessionStorage: sessionStorage,

		PerformanceMetrics: perf,
		Viewport:           content.Viewport,
		CrawledLinks:       crawled,
	}
}
