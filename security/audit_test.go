package security

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/giantswarm/github-authz/instrumentation"
	"github.com/giantswarm/github-authz/internal/testutil"
)

func TestNewAuditor(t *testing.T) {
	tests := []struct {
		name    string
		logger  *slog.Logger
		enabled bool
	}{
		{
			name:    "enabled with logger",
			logger:  slog.Default(),
			enabled: true,
		},
		{
			name:    "disabled with logger",
			logger:  slog.Default(),
			enabled: false,
		},
		{
			name:    "enabled with nil logger",
			logger:  nil,
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor := NewAuditor(tt.logger, tt.enabled)
			if auditor == nil {
				t.Fatal("NewAuditor() returned nil")
			}
			if auditor.enabled != tt.enabled {
				t.Errorf("enabled = %v, want %v", auditor.enabled, tt.enabled)
			}
			if auditor.logger == nil {
				t.Error("logger should not be nil")
			}
		})
	}
}

func TestAuditor_LogEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tests := []struct {
		name    string
		enabled bool
		wantLog bool
	}{
		{name: "enabled", enabled: true, wantLog: true},
		{name: "disabled", enabled: false, wantLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			auditor := NewAuditor(logger, tt.enabled)

			auditor.LogEvent(context.Background(), Event{
				Type:    "test_event",
				Login:   "john",
				Check:   "organization_member",
				Target:  "rails",
				Details: map[string]any{"key": "value"},
			})

			hasLog := buf.Len() > 0
			if hasLog != tt.wantLog {
				t.Errorf("LogEvent() logged = %v, want %v", hasLog, tt.wantLog)
			}
		})
	}
}

func TestAuditor_LogMembershipCheck(t *testing.T) {
	tests := []struct {
		name      string
		allowed   bool
		err       error
		wantParts []string
	}{
		{
			name:      "allowed",
			allowed:   true,
			wantParts: []string{"event_type=membership_check", "check=team_member", "target=123", "allowed:true"},
		},
		{
			name:      "failed",
			allowed:   false,
			err:       errors.New("provider unavailable"),
			wantParts: []string{"allowed:false", "provider unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			auditor := NewAuditor(slog.New(slog.NewTextHandler(&buf, nil)), true)

			auditor.LogMembershipCheck(context.Background(), "john", "team_member", "123", tt.allowed, tt.err)

			out := buf.String()
			for _, part := range tt.wantParts {
				if !strings.Contains(out, part) {
					t.Errorf("log output missing %q: %s", part, out)
				}
			}
			if strings.Contains(out, "john") {
				t.Errorf("log output contains the plain login: %s", out)
			}
			if !strings.Contains(out, "login_hash="+hashForLogging("john")) {
				t.Errorf("log output missing hashed login: %s", out)
			}
		})
	}
}

func TestAuditor_IdentityEvents(t *testing.T) {
	var buf bytes.Buffer
	auditor := NewAuditor(slog.New(slog.NewTextHandler(&buf, nil)), true)
	ctx := context.Background()

	auditor.LogIdentityLoaded(ctx, "john")
	auditor.LogIdentityLoadFailed(ctx, "unauthorized")
	auditor.LogSealedIdentityRejected(ctx, "decryption failed")

	out := buf.String()
	for _, event := range []string{EventIdentityLoaded, EventIdentityLoadFailed, EventSealedIdentityRejected} {
		if !strings.Contains(out, "event_type="+event) {
			t.Errorf("log output missing event %q: %s", event, out)
		}
	}
}

func TestAuditor_WithMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	inst, err := instrumentation.New(instrumentation.Config{
		Enabled:       true,
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	})
	if err != nil {
		t.Fatalf("instrumentation.New() error = %v", err)
	}

	var buf bytes.Buffer
	auditor := NewAuditor(slog.New(slog.NewTextHandler(&buf, nil)), true).WithMetrics(inst.Metrics())

	auditor.LogIdentityLoaded(context.Background(), "john")
	auditor.LogMembershipCheck(context.Background(), "john", "organization_member", "rails", true, nil)

	if got := testutil.SumInt64(t, reader, "audit.events.total"); got != 2 {
		t.Errorf("audit.events.total = %d, want 2", got)
	}

	disabled := NewAuditor(slog.New(slog.NewTextHandler(&buf, nil)), false).WithMetrics(inst.Metrics())
	disabled.LogIdentityLoaded(context.Background(), "john")

	if got := testutil.SumInt64(t, reader, "audit.events.total"); got != 2 {
		t.Errorf("audit.events.total after disabled auditor = %d, want 2", got)
	}
}

func Test_hashForLogging(t *testing.T) {
	if got := hashForLogging(""); got != "<empty>" {
		t.Errorf("hashForLogging(\"\") = %q, want %q", got, "<empty>")
	}

	got := hashForLogging("sensitive-data")
	if got == "sensitive-data" {
		t.Error("hashForLogging() returned unhashed sensitive data")
	}
	if len(got) != 16 {
		t.Errorf("hashForLogging() returned hash of length %d, want 16", len(got))
	}
}

func Test_hashForLogging_Deterministic(t *testing.T) {
	if hashForLogging("test-data") != hashForLogging("test-data") {
		t.Error("hashForLogging() should return same hash for same input")
	}
	if hashForLogging("data1") == hashForLogging("data2") {
		t.Error("hashForLogging() should return different hashes for different inputs")
	}
}

func TestAuditor_LogEvent_SpanEvent(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	enabled := NewAuditor(slog.New(slog.DiscardHandler), true)
	disabled := NewAuditor(slog.New(slog.DiscardHandler), false)

	ctx, span := tracer.Start(context.Background(), "authz.is_organization_member")
	enabled.LogMembershipCheck(ctx, "john", "organization_member", "rails", true, nil)
	disabled.LogMembershipCheck(ctx, "john", "organization_member", "rails", true, nil)
	span.End()

	events := recorder.Ended()[0].Events()
	if len(events) != 1 {
		t.Fatalf("recorded %d span events, want 1", len(events))
	}
	attrs := events[0].Attributes
	if len(attrs) != 1 || string(attrs[0].Key) != instrumentation.AttrAuditEventType || attrs[0].Value.AsString() != EventMembershipCheck {
		t.Errorf("event attributes = %v, want %s=%s", attrs, instrumentation.AttrAuditEventType, EventMembershipCheck)
	}
}
