package browser

import (
	"sync"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
)

// Telemetry accumulates everything the instrumentation layer captures during
// one navigation. Each buffer is owned by exactly one analysis request; there
// is no cross-request sharing. Events are stored in real encounter order.
type Telemetry struct {
	mu sync.Mutex

	primaryURL     string
	primaryStatus  int
	primaryHeaders map[string]string

	network []model.NetworkEvent
	console []model.ConsoleEvent

	// requestID -> index into network, for correlating response and
	// loading-finished events with their request.
	byRequestID map[string]int
	urlByReqID  map[string]string
}

// NewTelemetry returns an empty buffer.
func NewTelemetry() *Telemetry {
	return &Telemetry{
		byRequestID: make(map[string]int),
		urlByReqID:  make(map[string]string),
	}
}

// SetPrimaryURL marks the document URL whose response supplies the
// primary-document status and headers.
func (t *Telemetry) SetPrimaryURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primaryURL = url
}

// BeginRequest records an outgoing request before any response arrives.
func (t *Telemetry) BeginRequest(requestID string, ev model.NetworkEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byRequestID[requestID] = len(t.network)
	t.urlByReqID[requestID] = ev.Name
	t.network = append(t.network, ev)
}

// CompleteRequest merges response details into the matching request entry.
// An unmatched response is appended as its own entry rather than dropped.
func (t *Telemetry) CompleteRequest(requestID string, isDocument bool, update func(*model.NetworkEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.byRequestID[requestID]
	if !ok {
		idx = len(t.network)
		t.network = append(t.network, model.NetworkEvent{})
		t.byRequestID[requestID] = idx
	}
	update(&t.network[idx])

	ev := t.network[idx]
	if t.primaryStatus == 0 && (ev.Name == t.primaryURL || (isDocument && t.primaryHeaders == nil)) {
		t.primaryStatus = ev.Status
		t.primaryHeaders = ev.ResponseHeaders
	}
}

// FinishRequest records the final transfer size once loading completed.
func (t *Telemetry) FinishRequest(requestID string, transferSize int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx, ok := t.byRequestID[requestID]; ok {
		t.network[idx].TransferSize = transferSize
	}
}

// RequestURL returns the URL recorded for a request ID, if any.
func (t *Telemetry) RequestURL(requestID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.urlByReqID[requestID]
}

// AddConsole appends one console-equivalent event.
func (t *Telemetry) AddConsole(ev model.ConsoleEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.console = append(t.console, ev)
}

// Network returns a copy of the captured network events in encounter order.
func (t *Telemetry) Network() []model.NetworkEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.NetworkEvent, len(t.network))
	copy(out, t.network)
	return out
}

// Console returns a copy of the captured console events in encounter order.
func (t *Telemetry) Console() []model.ConsoleEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.ConsoleEvent, len(t.console))
	copy(out, t.console)
	return out
}

// PrimaryStatus returns the HTTP status of the primary document, 0 if no
// document response was observed.
func (t *Telemetry) PrimaryStatus() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.primaryStatus
}

// PrimaryHeaders returns the primary document's response headers, nil if no
// document response was observed.
func (t *Telemetry) PrimaryHeaders() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.primaryHeaders
}
