package authz

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/github-authz/instrumentation"
	"github.com/giantswarm/github-authz/providers"
	"github.com/giantswarm/github-authz/providers/github"
	"github.com/giantswarm/github-authz/security"
)

// Config controls how Users reach the provider and report their decisions.
// A nil *Config is valid and talks to api.github.com with default settings.
type Config struct {
	// ClientFactory builds provider clients from credential tokens.
	// If nil, a GitHub client factory is built from GitHub.
	ClientFactory providers.ClientFactory

	// GitHub configures the default GitHub client factory.
	// Ignored when ClientFactory is set.
	GitHub github.Config

	// Logger for structured logging (optional, uses slog.Default() if not provided)
	Logger *slog.Logger

	// EnableAuditLogging writes one security audit record per membership
	// decision and identity load. Logins are hashed.
	EnableAuditLogging bool

	// Instrumentation for traces and metrics (optional, disabled if not provided)
	Instrumentation *instrumentation.Instrumentation
}

// applyDefaults fills unset fields. The GitHub section inherits the logger
// and instrumentation unless it sets its own.
func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Instrumentation == nil {
		c.Instrumentation = instrumentation.NewDisabled()
	}
	if c.GitHub.Logger == nil {
		c.GitHub.Logger = c.Logger
	}
	if c.GitHub.Instrumentation == nil {
		c.GitHub.Instrumentation = c.Instrumentation
	}
}

// Validate reports configuration errors that would otherwise surface on the
// first provider call.
func (c *Config) Validate() error {
	if c == nil || c.ClientFactory != nil {
		return nil
	}
	if _, err := github.NewClientFactory(&c.GitHub); err != nil {
		return fmt.Errorf("invalid github configuration: %w", err)
	}
	return nil
}

// runtime is the resolved, immutable form of a Config shared by the Users built from it.
type runtime struct {
	factory    providers.ClientFactory
	factoryErr error

	logger          *slog.Logger
	auditor         *security.Auditor
	instrumentation *instrumentation.Instrumentation
	metrics         *instrumentation.Metrics
	tracer          trace.Tracer
}

// newRuntime resolves cfg. A nil cfg yields the defaults.
// A broken GitHub configuration is kept as factoryErr and returned by every
// client construction.
func newRuntime(cfg *Config) *runtime {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	c.applyDefaults()

	rt := &runtime{
		logger:          c.Logger,
		auditor:         security.NewAuditor(c.Logger, c.EnableAuditLogging).WithMetrics(c.Instrumentation.Metrics()),
		instrumentation: c.Instrumentation,
		metrics:         c.Instrumentation.Metrics(),
		tracer:          c.Instrumentation.Tracer("authz"),
	}

	if c.ClientFactory != nil {
		rt.factory = c.ClientFactory
		return rt
	}

	factory, err := github.NewClientFactory(&c.GitHub)
	if err != nil {
		rt.factoryErr = fmt.Errorf("invalid github configuration: %w", err)
		return rt
	}
	rt.factory = factory
	return rt
}

// newClient builds a provider client for token.
func (rt *runtime) newClient(token string) (providers.Client, error) {
	if rt.factoryErr != nil {
		return nil, rt.factoryErr
	}
	client, err := rt.factory.NewClient(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}
