// Package instrumentation provides OpenTelemetry (OTEL) instrumentation for the github-authz library.
//
// This package enables observability of provider calls and authorization decisions through:
// - Metrics: Counters and histograms for provider API calls and membership checks
// - Traces: One span per provider call and per authorization check
//
// # Quick Start
//
// Instrumentation is disabled unless explicitly enabled. Pass your own SDK
// providers to export data:
//
//	import (
//		sdkmetric "go.opentelemetry.io/otel/sdk/metric"
//		sdktrace "go.opentelemetry.io/otel/sdk/trace"
//	)
//
//	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "my-gateway",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//		MeterProvider:  mp,
//		TracerProvider: tp,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	inst.RegisterShutdown(mp.Shutdown)
//	inst.RegisterShutdown(tp.Shutdown)
//	defer inst.Shutdown(context.Background())
//
// # Available Metrics
//
// Provider:
//   - provider.api.calls.total{provider, operation, status} - Provider API calls
//   - provider.api.duration{provider, operation} - Call duration in milliseconds
//   - provider.api.errors{provider, operation, error_type} - Failed calls by error kind
//
// Authorization:
//   - authz.membership.checks{check, outcome} - Membership checks (allowed, denied, error)
//   - authz.identity.loaded{success} - Identities loaded from the provider
//
// Security:
//   - audit.events.total{event_type} - Audit events written
//   - encryption.operations.total{operation} - Seal/open operations
//   - encryption.duration{operation} - Seal/open duration in milliseconds
//
// # Traces
//
// Span names:
//   - github.fetch_self, github.is_public_member, github.is_member,
//     github.list_team_members, github.list_team_members_by_slug, github.health_check
//   - authz.load, authz.is_public_organization_member, authz.is_organization_member,
//     authz.is_team_member
//
// Credential tokens are never recorded in span attributes or metric labels.
package instrumentation
