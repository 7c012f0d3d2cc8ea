package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/errs"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/metrics"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/requestid"
)

// Service orchestrates a ScrapeProvider, logging outcomes and recording
// metrics. It adds nothing to the analysis itself.
type Service struct {
	provider ScrapeProvider
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider.
func NewService(provider ScrapeProvider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Analyze delegates to the provider and logs the outcome.
func (s *Service) Analyze(ctx context.Context, targetURL string) (*model.PageAnalysisResult, error) {
	logger := s.logger.With("url", targetURL, "request_id", requestid.FromContext(ctx))
	start := time.Now()

	result, err := s.provider.Analyze(ctx, targetURL)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.NavigationTimeout,
				Message: "Analysis timed out. The target URL may be slow to respond.",
				Cause:   err,
			}
		}

		kind := errs.KindOf(err)
		metrics.AnalysesFailed.WithLabelValues(kind.String()).Inc()

		attrs := []any{"error", err, "kind", kind.String()}
		var appErr *errs.AppError
		if errors.As(err, &appErr) && appErr.UpstreamStatus != 0 {
			attrs = append(attrs, "target_status", appErr.UpstreamStatus)
		}
		logger.Error("analysis failed", attrs...)
		return nil, err
	}

	metrics.AnalysesCompleted.Inc()
	logger.Info("analysis complete",
		"title", result.Title,
		"word_count", result.WordCount,
		"language", result.Language,
		"network_events", len(result.NetworkResources),
		"console_events", len(result.ConsoleLogs),
		"security_notes", len(result.SecurityReport.Notes),
		"crawled_links", len(result.CrawledLinks),
		"response_time_ms", result.ResponseTimeMs,
	)
	return result, nil
}
