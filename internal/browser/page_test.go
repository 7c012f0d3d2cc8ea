package browser

import (
	"context"
	"strings"
	"testing"

	"github.com/Haggai-dev665/web-scrapper/backend/internal/model"
)

func TestGuard_PanicBecomesDiagnosticEvent(t *testing.T) {
	tel := NewTelemetry()

	guard(tel, "response", func() {
		panic("unexpected header shape")
	})

	console := tel.Console()
	if len(console) != 1 {
		t.Fatalf("console = %d events, want 1 diagnostic", len(console))
	}
	if console[0].Level != "error" {
		t.Errorf("level = %q, want error", console[0].Level)
	}
	if !strings.Contains(console[0].Message, "response listener failure") {
		t.Errorf("message = %q, want the listener name in the diagnostic", console[0].Message)
	}
	if !strings.Contains(console[0].Message, "unexpected header shape") {
		t.Errorf("message = %q, want the panic value in the diagnostic", console[0].Message)
	}
}

func TestGuard_ListenersAreIndependent(t *testing.T) {
	tel := NewTelemetry()

	// One listener failing must not stop later ones from recording.
	guard(tel, "console", func() {
		panic("boom")
	})
	guard(tel, "request", func() {
		tel.BeginRequest("1", model.NetworkEvent{Name: "https://example.com/a"})
	})

	if got := len(tel.Network()); got != 1 {
		t.Errorf("network = %d events, want 1 from the healthy listener", got)
	}
	if got := len(tel.Console()); got != 1 {
		t.Errorf("console = %d events, want 1 diagnostic", got)
	}
}

func TestGuard_HealthyBodyRecordsNothingExtra(t *testing.T) {
	tel := NewTelemetry()

	guard(tel, "request", func() {
		tel.AddConsole(model.ConsoleEvent{Level: "log", Message: "page message"})
	})

	console := tel.Console()
	if len(console) != 1 || console[0].Message != "page message" {
		t.Errorf("console = %v, want only the listener's own event", console)
	}
}

func TestPageHandle_CloseReleasesCaptureContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &PageHandle{cancel: cancel}

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-ctx.Done():
	default:
		t.Error("capture context still live after Close")
	}

	// A second Close is a no-op.
	if err := p.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}
