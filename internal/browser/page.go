package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
	"github.com/Haggai-dev665/web-scrapper/backend/internal/platform/metrics"
)

// PageHandle wraps one isolated browser page. It is owned by a single
// analysis request (or crawl sub-step) and must be closed by that owner on
// every exit path; Close is safe to call more than once but only the first
// call acts.
type PageHandle struct {
	page      *rod.Page
	cancel    context.CancelFunc
	telemetry *Telemetry
	closeOnce sync.Once
}

// Instrument registers the capture listeners on the page and returns the
// per-request telemetry buffer. It must be called before Navigate so that
// no early event is missed. Each listener body is independently
// fault-isolated: a failure inside one is recorded as a diagnostic event
// and never aborts navigation or the other listeners.
func (p *PageHandle) Instrument() *Telemetry {
	t := NewTelemetry()
	p.telemetry = t

	go p.page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			guard(t, "request", func() {
				t.BeginRequest(string(e.RequestID), model.NetworkEvent{
					Name:           e.Request.URL,
					Method:         e.Request.Method,
					InitiatorType:  string(e.Type),
					StartTimeMs:    float64(e.Timestamp) * 1000,
					RequestHeaders: headerMap(e.Request.Headers),
					HasPostData:    e.Request.HasPostData,
				})
			})
		},
		func(e *proto.NetworkResponseReceived) {
			guard(t, "response", func() {
				isDocument := e.Type == proto.NetworkResourceTypeDocument
				t.CompleteRequest(string(e.RequestID), isDocument, func(ev *model.NetworkEvent) {
					if ev.Name == "" {
						ev.Name = e.Response.URL
					}
					if ev.StartTimeMs > 0 {
						ev.DurationMs = float64(e.Timestamp)*1000 - ev.StartTimeMs
					}
					ev.Status = e.Response.Status
					ev.StatusText = e.Response.StatusText
					ev.MimeType = e.Response.MIMEType
					ev.ResponseHeaders = headerMap(e.Response.Headers)
					ev.Cached = e.Response.FromDiskCache
					ev.ServiceWorker = e.Response.FromServiceWorker
					ev.RemoteAddress = e.Response.RemoteIPAddress
					ev.Protocol = e.Response.Protocol
				})
			})
		},
		func(e *proto.NetworkLoadingFinished) {
			guard(t, "loading-finished", func() {
				// Bounded size sampling only; bodies are never buffered.
				t.FinishRequest(string(e.RequestID), int64(e.EncodedDataLength))
			})
		},
		func(e *proto.NetworkLoadingFailed) {
			guard(t, "loading-failed", func() {
				t.AddConsole(model.ConsoleEvent{
					Level:   "error",
					Message: fmt.Sprintf("Failed to load: %s", t.RequestURL(string(e.RequestID))),
					Args:    []string{e.ErrorText},
				})
			})
		},
		func(e *proto.RuntimeConsoleAPICalled) {
			guard(t, "console", func() {
				args := resolveArgs(e.Args)
				t.AddConsole(model.ConsoleEvent{
					Level:    string(e.Type),
					Message:  strings.Join(args, " "),
					Args:     args,
					Location: frameLocation(e.StackTrace),
				})
			})
		},
		func(e *proto.RuntimeExceptionThrown) {
			guard(t, "exception", func() {
				d := e.ExceptionDetails
				msg := d.Text
				if d.Exception != nil && d.Exception.Description != "" {
					msg = d.Exception.Description
				}
				t.AddConsole(model.ConsoleEvent{
					Level:      "error",
					Message:    fmt.Sprintf("JavaScript error: %s", msg),
					StackTrace: stackString(d.StackTrace),
				})
			})
		},
		func(e *proto.PageJavascriptDialogOpening) {
			guard(t, "dialog", func() {
				// Dismiss so navigation cannot hang on a native dialog.
				t.AddConsole(model.ConsoleEvent{
					Level:   "info",
					Message: fmt.Sprintf("Dialog (%s): %s", e.Type, e.Message),
				})
				_ = proto.PageHandleJavaScriptDialog{Accept: false}.Call(p.page)
			})
		},
	)()

	return t
}

// guard isolates one listener invocation, converting a panic into a
// diagnostic console event.
func guard(t *Telemetry, listener string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.AddConsole(model.ConsoleEvent{
				Level:   "error",
				Message: fmt.Sprintf("internal: %s listener failure: %v", listener, r),
			})
		}
	}()
	fn()
}

func headerMap(h proto.NetworkHeaders) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v.Str()
	}
	return out
}

// resolveArgs renders console arguments best-effort: JSON values where the
// protocol delivered them, the remote object description otherwise.
func resolveArgs(args []*proto.RuntimeRemoteObject) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		switch {
		case a.Value.Val() != nil:
			out = append(out, fmt.Sprint(a.Value.Val()))
		case a.Description != "":
			out = append(out, a.Description)
		default:
			out = append(out, string(a.Type))
		}
	}
	return out
}

func frameLocation(st *proto.RuntimeStackTrace) string {
	if st == nil || len(st.CallFrames) == 0 {
		return ""
	}
	f := st.CallFrames[0]
	return fmt.Sprintf("%s:%d", f.URL, f.LineNumber)
}

func stackString(st *proto.RuntimeStackTrace) string {
	if st == nil {
		return ""
	}
	frames := make([]string, 0, len(st.CallFrames))
	for _, f := range st.CallFrames {
		frames = append(frames, fmt.Sprintf("%s:%d:%d", f.URL, f.LineNumber, f.ColumnNumber))
	}
	return strings.Join(frames, "\n")
}

// Navigate drives the page to the URL and waits for DOM-ready rather than
// network-idle, tolerating pages with long-lived connections that never
// settle. The context deadline bounds the whole wait.
func (p *PageHandle) Navigate(ctx context.Context, url string) error {
	if p.telemetry != nil {
		p.telemetry.SetPrimaryURL(url)
	}

	page := p.page.Context(ctx)
	wait := page.WaitEvent(&proto.PageDomContentEventFired{})
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

// Eval runs a JS function inside the document context and decodes its JSON
// result into out (pass nil to discard).
func (p *PageHandle) Eval(ctx context.Context, js string, out any) error {
	res, err := p.page.Context(ctx).Eval(js)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Screenshot captures a full-page PNG.
func (p *PageHandle) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// Cookies returns the cookies visible to the page after rendering.
func (p *PageHandle) Cookies() ([]model.Cookie, error) {
	cookies, err := p.page.Cookies(nil)
	if err != nil {
		return nil, err
	}

	out := make([]model.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, model.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out, nil
}

// Close releases the page exactly once: the CDP target is closed first,
// then the handle's context is cancelled so the event-capture goroutine and
// its browser subscription end with the page rather than at process
// shutdown.
func (p *PageHandle) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if p.page != nil {
			err = p.page.Close()
		}
		if p.cancel != nil {
			p.cancel()
		}
		metrics.OpenPageContexts.Dec()
	})
	return err
}
