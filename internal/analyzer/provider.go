package analyzer

import (
	"context"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
)

// ScrapeProvider defines the contract for any page-analysis engine.
type ScrapeProvider interface {
	Analyze(ctx context.Context, targetURL string) (*model.PageAnalysisResult, error)
}
