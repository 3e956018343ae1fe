package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/github-authz/instrumentation"
)

// Auditor handles security event logging with PII protection.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
	metrics *instrumentation.Metrics
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// WithMetrics makes the auditor count written events in m.
// It returns the auditor for chaining.
func (a *Auditor) WithMetrics(m *instrumentation.Metrics) *Auditor {
	a.metrics = m
	return a
}

// Event represents a security audit event
type Event struct {
	Type string
	// Login is hashed before it is written
	Login     string
	Check     string
	Target    string
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent logs a security event with hashed PII
func (a *Auditor) LogEvent(ctx context.Context, event Event) {
	if !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.InfoContext(ctx, "security_audit",
		"event_type", event.Type,
		"login_hash", hashForLogging(event.Login),
		"check", event.Check,
		"target", event.Target,
		"details", event.Details,
		"timestamp", event.Timestamp,
	)

	instrumentation.AddAuditEvent(trace.SpanFromContext(ctx), event.Type)

	if a.metrics != nil {
		a.metrics.RecordAuditEvent(ctx, event.Type)
	}
}

// LogMembershipCheck logs an authorization decision.
// A non-nil err means no decision could be made.
func (a *Auditor) LogMembershipCheck(ctx context.Context, login, check, target string, allowed bool, err error) {
	details := map[string]any{
		"allowed": allowed,
	}
	if err != nil {
		details["error"] = err.Error()
	}

	a.LogEvent(ctx, Event{
		Type:    EventMembershipCheck,
		Login:   login,
		Check:   check,
		Target:  target,
		Details: details,
	})
}

// LogIdentityLoaded logs a successful identity load
func (a *Auditor) LogIdentityLoaded(ctx context.Context, login string) {
	a.LogEvent(ctx, Event{
		Type:  EventIdentityLoaded,
		Login: login,
	})
}

// LogIdentityLoadFailed logs a failed identity load
func (a *Auditor) LogIdentityLoadFailed(ctx context.Context, reason string) {
	a.LogEvent(ctx, Event{
		Type: EventIdentityLoadFailed,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// LogSealedIdentityRejected logs a sealed identity that failed to open
func (a *Auditor) LogSealedIdentityRejected(ctx context.Context, reason string) {
	a.LogEvent(ctx, Event{
		Type: EventSealedIdentityRejected,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// hashForLogging creates a SHA256 hash of sensitive data for logging
func hashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
