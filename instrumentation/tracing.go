package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
//
// SECURITY WARNING: Never put credential tokens into traces or metrics.
// Logins are identifiers, not secrets, and may be recorded.
const (
	// Provider attributes
	AttrProviderName      = "provider.name"
	AttrProviderOperation = "provider.operation"
	AttrProviderStatus    = "provider.status"
	AttrProviderErrorType = "provider.error_type"

	// Authorization attributes
	AttrAuthzCheck   = "authz.check"
	AttrAuthzTarget  = "authz.target"
	AttrAuthzAllowed = "authz.allowed"
	AttrUserLogin    = "authz.user.login"

	// Security attributes
	AttrAuditEventType      = "security.audit.event_type"
	AttrEncryptionOperation = "security.encryption.operation"

	// HTTP attributes (in addition to standard semantic conventions)
	AttrHTTPMethod     = "http.method"
	AttrHTTPEndpoint   = "http.endpoint"
	AttrHTTPStatusCode = "http.status_code"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddProviderAttributes adds provider attributes to a span (nil-safe)
func AddProviderAttributes(span trace.Span, providerName, operation string) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderName, providerName),
		attribute.String(AttrProviderOperation, operation),
	)
}

// AddProviderResultAttributes adds the HTTP status and, on failure, the error kind (nil-safe)
func AddProviderResultAttributes(span trace.Span, statusCode int, errorKind string) {
	if statusCode != 0 {
		SetSpanAttributes(span, attribute.Int(AttrProviderStatus, statusCode))
	}
	if errorKind != "" {
		SetSpanAttributes(span, attribute.String(AttrProviderErrorType, errorKind))
	}
}

// AddAuthorizationAttributes adds membership check attributes to a span (nil-safe)
func AddAuthorizationAttributes(span trace.Span, check, target, login string) {
	SetSpanAttributes(span,
		attribute.String(AttrAuthzCheck, check),
		attribute.String(AttrAuthzTarget, target),
	)
	if login != "" {
		SetSpanAttributes(span, attribute.String(AttrUserLogin, login))
	}
}

// AddEncryptionAttributes adds the sealing operation to a span (nil-safe)
func AddEncryptionAttributes(span trace.Span, operation string) {
	SetSpanAttributes(span, attribute.String(AttrEncryptionOperation, operation))
}

// AddAuditEvent marks a security audit record on a span (nil-safe).
// Only the event type is recorded; audit details stay in the log.
func AddAuditEvent(span trace.Span, eventType string) {
	if span != nil {
		span.AddEvent("security_audit", trace.WithAttributes(attribute.String(AttrAuditEventType, eventType)))
	}
}

// AddHTTPAttributes adds HTTP request attributes to a span (nil-safe)
func AddHTTPAttributes(span trace.Span, method, endpoint string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPEndpoint, endpoint),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}
