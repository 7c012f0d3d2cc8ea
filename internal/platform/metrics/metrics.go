package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counts how many page analyses completed successfully.
var AnalysesCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scraper_analyses_completed_total",
	Help: "Total number of page analyses that completed successfully",
})

// Counts failed analyses, labeled by error kind.
var AnalysesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scraper_analyses_failed_total",
	Help: "Total number of page analyses that failed, by error kind",
}, []string{"kind"})

// Measures end-to-end analysis duration including the internal crawl pass.
var AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "scraper_analysis_duration_seconds",
	Help:    "Time taken for one full page analysis",
	Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 500ms to ~4m
})

// Counts sub-pages visited by the internal crawl pass.
var CrawledPages = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scraper_crawled_pages_total",
	Help: "Total number of same-origin sub-pages visited during crawls",
})

// Tracks currently open browser page contexts; a steady non-zero value
// between requests indicates a leak.
var OpenPageContexts = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "scraper_open_page_contexts",
	Help: "Number of browser page contexts currently open",
})

// Counts browser process launches, including re-launches after shutdown.
var BrowserLaunches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scraper_browser_launches_total",
	Help: "Total number of headless browser process launches",
})
