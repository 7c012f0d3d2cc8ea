// Package browser owns the shared headless Chrome process and the
// instrumented page contexts handed out to analysis requests.
package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/errs"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/metrics"
)

// Page is the contract a page context offers to the navigation engine.
// Implemented by *PageHandle; test doubles implement it to count lifecycle
// calls.
type Page interface {
	Instrument() *Telemetry
	Navigate(ctx context.Context, url string) error
	Eval(ctx context.Context, js string, out any) error
	Screenshot(ctx context.Context) ([]byte, error)
	Cookies() ([]model.Cookie, error)
	Close() error
}

// Options configures the browser process and its page contexts.
type Options struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

// Manager owns a single long-lived headless Chrome process. The process is
// launched lazily on first use and reused by every request until Shutdown.
type Manager struct {
	mu      sync.Mutex
	browser *rod.Browser
	opts    Options
	logger  *slog.Logger
}

// NewManager returns a Manager that will launch the browser on first use.
func NewManager(opts Options, logger *slog.Logger) *Manager {
	return &Manager{opts: opts, logger: logger}
}

// EnsureReady launches the browser process if it is not already running.
// It is idempotent; concurrent callers during launch serialize on the
// manager lock, so only one launch ever happens.
func (m *Manager) EnsureReady(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureReadyLocked(ctx)
}

func (m *Manager) ensureReadyLocked(_ context.Context) error {
	if m.browser != nil {
		return nil
	}

	m.logger.Info("launching headless browser")

	// Hardened flags for containerized deployment: sandboxing off, GPU off.
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-accelerated-2d-canvas").
		Set("no-first-run").
		Set("no-zygote").
		Set("disable-gpu")

	controlURL, err := l.Launch()
	if err != nil {
		return &errs.AppError{
			Kind:    errs.SessionUnavailable,
			Message: "The browser process could not be launched.",
			Cause:   err,
		}
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return &errs.AppError{
			Kind:    errs.SessionUnavailable,
			Message: "Could not connect to the browser process.",
			Cause:   err,
		}
	}

	m.browser = b
	metrics.BrowserLaunches.Inc()
	m.logger.Info("headless browser launched")
	return nil
}

// Ready reports whether the browser process is currently running.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser != nil
}

// AcquirePage returns a fresh, isolated page context. The context deadline
// bounds acquisition; exceeding it yields SessionOverloaded rather than a
// hang. The caller owns the page and must Close it on every exit path.
func (m *Manager) AcquirePage(ctx context.Context) (Page, error) {
	m.mu.Lock()
	if err := m.ensureReadyLocked(ctx); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	b := m.browser
	m.mu.Unlock()

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &errs.AppError{
				Kind:    errs.SessionOverloaded,
				Message: "Creating a browser page timed out. The browser may be overloaded. Please try again.",
				Cause:   err,
			}
		}
		return nil, &errs.AppError{
			Kind:    errs.SessionUnavailable,
			Message: "Failed to create a browser page.",
			Cause:   err,
		}
	}

	// Detach from the acquisition deadline. The handle owns this context
	// until Close; cancelling it there ends the event-capture subscription
	// along with the page.
	pageCtx, cancel := context.WithCancel(context.Background())
	page = page.Context(pageCtx)

	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.opts.ViewportWidth,
		Height:            m.opts.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if m.opts.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{UserAgent: m.opts.UserAgent}.Call(page)
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: proto.NetworkHeaders{
		"Accept-Language": gson.New("en-US,en;q=0.9"),
	}}.Call(page)

	metrics.OpenPageContexts.Inc()
	return &PageHandle{page: page, cancel: cancel}, nil
}

// Shutdown closes the browser process and releases all resources. A later
// EnsureReady re-launches.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil
	}

	err := m.browser.Close()
	m.browser = nil
	m.logger.Info("headless browser shut down")
	return err
}
