package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/analytics"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/analyzer"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/assess"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/browser"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/config"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/logger"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/middleware"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("scraper service starting", "port", cfg.Port)

	manager := browser.NewManager(browser.Options{
		UserAgent:      cfg.UserAgent,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
	}, log)

	engine := scraper.NewEngine(
		manager,
		analytics.New(analytics.DefaultConfig()),
		assess.New(assess.DefaultConfig()),
		scraper.Options{
			PageCreateTimeout: cfg.PageCreateTimeout(),
			NavigationTimeout: cfg.NavigationTimeout(),
			SettleDelay:       cfg.SettleDelay(),
			Crawl: scraper.CrawlOptions{
				MaxLinks:          cfg.CrawlMaxLinks,
				PageCreateTimeout: time.Duration(cfg.CrawlPageCreateTimeoutSec) * time.Second,
				NavigationTimeout: time.Duration(cfg.CrawlNavigationTimeoutSec) * time.Second,
				SettleDelay:       time.Duration(cfg.CrawlSettleDelaySec) * time.Second,
				PacePerSecond:     cfg.CrawlPacePerSecond,
			},
		},
		log,
	)

	service := analyzer.NewService(engine, log)
	transport := analyzer.NewTransport(service, log)

	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.RequestID(middleware.Logging(log)(mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
		}
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	if err := manager.Shutdown(); err != nil {
		log.Error("browser shutdown failed", "error", err)
	}
}
