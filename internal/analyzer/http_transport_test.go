package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/errs"
)

// mockProvider implements ScrapeProvider for testing.
type mockProvider struct {
	result *model.PageAnalysisResult
	err    error
}

func (m *mockProvider) Analyze(_ context.Context, _ string) (*model.PageAnalysisResult, error) {
	return m.result, m.err
}

func newTestMux(provider ScrapeProvider) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(provider, logger)
	transport := NewTransport(svc, logger)
	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)
	return mux
}

func postScrape(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleScrape_Success(t *testing.T) {
	provider := &mockProvider{
		result: &model.PageAnalysisResult{
			URL:       "https://example.com",
			Title:     "Example",
			WordCount: 120,
			Language:  "English",
		},
	}
	mux := newTestMux(provider)

	rec := postScrape(mux, `{"url": "https://example.com"}`)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp model.ScrapeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Errorf("success = false, want true; error = %q", resp.Error)
	}
	if resp.Data == nil {
		t.Fatal("data = nil, want the analysis result")
	}
	if resp.Data.Title != "Example" {
		t.Errorf("Title = %q, want Example", resp.Data.Title)
	}
	if resp.Error != "" {
		t.Errorf("error = %q, want empty on success", resp.Error)
	}
}

func TestHandleScrape_EmptyURL(t *testing.T) {
	mux := newTestMux(&mockProvider{})

	rec := postScrape(mux, `{"url": ""}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp model.ScrapeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Error == "" {
		t.Error("error message is empty")
	}
}

func TestHandleScrape_MalformedJSON(t *testing.T) {
	mux := newTestMux(&mockProvider{})

	rec := postScrape(mux, `{invalid json`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleScrape_MissingBody(t *testing.T) {
	mux := newTestMux(&mockProvider{})

	rec := postScrape(mux, "")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleScrape_ErrorKindMapping(t *testing.T) {
	tests := []struct {
		name       string
		kind       errs.Kind
		wantStatus int
	}{
		{"invalid input", errs.InvalidInput, http.StatusBadRequest},
		{"session unavailable", errs.SessionUnavailable, http.StatusServiceUnavailable},
		{"session overloaded", errs.SessionOverloaded, http.StatusServiceUnavailable},
		{"navigation timeout", errs.NavigationTimeout, http.StatusGatewayTimeout},
		{"navigation failed", errs.NavigationFailed, http.StatusBadGateway},
		{"extraction failed", errs.ExtractionFailed, http.StatusInternalServerError},
		{"unknown", errs.Unknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{
				err: &errs.AppError{Kind: tt.kind, Message: "analysis did not complete"},
			}
			mux := newTestMux(provider)

			rec := postScrape(mux, `{"url": "https://example.com"}`)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp model.ScrapeResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Success {
				t.Error("success = true, want false")
			}
			if resp.Error != "analysis did not complete" {
				t.Errorf("error = %q, want the AppError message", resp.Error)
			}
		})
	}
}

func TestHandleScrape_PlainErrorIsOpaque(t *testing.T) {
	provider := &mockProvider{err: errors.New("chrome exploded: /tmp/chrome-profile-xyz")}
	mux := newTestMux(provider)

	rec := postScrape(mux, `{"url": "https://example.com"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var resp model.ScrapeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if strings.Contains(resp.Error, "chrome") {
		t.Errorf("error = %q, internal details leaked", resp.Error)
	}
}

func TestHandleScrape_WrongMethod(t *testing.T) {
	mux := newTestMux(&mockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/scrape", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// ServeMux returns 405 for method mismatch.
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleHealth(t *testing.T) {
	mux := newTestMux(&mockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}
