package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v66/github"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/giantswarm/github-authz/instrumentation"
	"github.com/giantswarm/github-authz/internal/util"
	"github.com/giantswarm/github-authz/providers"
)

// Compile-time checks that the GitHub types implement the providers interfaces.
var (
	_ providers.ClientFactory = (*ClientFactory)(nil)
	_ providers.Client        = (*Client)(nil)
)

// providerName is used in metrics, spans and logs.
const providerName = "github"

// DefaultRequestTimeout is applied to calls whose context carries no deadline.
const DefaultRequestTimeout = 30 * time.Second

// defaultPageSize is the maximum page size GitHub accepts for member listings.
const defaultPageSize = 100

// Provider operations, used as span suffixes and metric attributes.
const (
	opNewClient             = "new_client"
	opFetchSelf             = "fetch_self"
	opIsPublicMember        = "is_public_member"
	opIsMember              = "is_member"
	opListTeamMembers       = "list_team_members"
	opListTeamMembersBySlug = "list_team_members_by_slug"
	opHealthCheck           = "health_check"
)

const (
	// tokenPrefixLogLength is how much of a token may appear in debug logs
	tokenPrefixLogLength = 4

	maxPathSegmentLength = 100
)

// ErrEmptyToken is wrapped into the ProviderError returned when a client is
// requested for an empty token.
var ErrEmptyToken = errors.New("github token is empty")

// ErrInvalidPathSegment is wrapped into the ProviderError returned when an
// organization, login or slug cannot be used as a URL path segment.
var ErrInvalidPathSegment = errors.New("invalid github name")

// Config holds GitHub API client configuration.
type Config struct {
	// BaseURL is the REST API root, e.g. "https://github.example.com/api/v3".
	// Defaults to https://api.github.com.
	BaseURL string

	// HTTPClient is an optional base HTTP client. Its transport carries the
	// authenticated requests; its Timeout is not used (see RequestTimeout).
	HTTPClient *http.Client

	// RequestTimeout is the timeout for GitHub API calls when the caller's
	// context has no deadline (default: 30s).
	RequestTimeout time.Duration

	// UserAgent overrides the go-github default user agent.
	UserAgent string

	// Logger for structured logging (optional, uses slog.Default() if not provided)
	Logger *slog.Logger

	// Instrumentation for traces and metrics (optional, disabled if not provided)
	Instrumentation *instrumentation.Instrumentation
}

// ClientFactory builds token-scoped GitHub API clients.
// It is safe for concurrent use.
type ClientFactory struct {
	baseURL         *url.URL
	httpClient      *http.Client
	requestTimeout  time.Duration
	userAgent       string
	logger          *slog.Logger
	instrumentation *instrumentation.Instrumentation
	tracer          trace.Tracer
}

// NewClientFactory creates a new GitHub client factory.
// A nil config uses defaults for every field.
func NewClientFactory(cfg *Config) (*ClientFactory, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	var baseURL *url.URL
	if cfg.BaseURL != "" {
		parsed, err := url.Parse(util.NormalizeURL(cfg.BaseURL) + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		if parsed.Scheme != "https" && parsed.Scheme != "http" {
			return nil, fmt.Errorf("base URL must use http or https, got %q", parsed.Scheme)
		}
		if parsed.Host == "" {
			return nil, fmt.Errorf("base URL must include a host")
		}
		baseURL = parsed
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if requestTimeout < 0 {
		return nil, fmt.Errorf("request timeout must not be negative")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	inst := cfg.Instrumentation
	if inst == nil {
		inst = instrumentation.NewDisabled()
	}

	return &ClientFactory{
		baseURL:         baseURL,
		httpClient:      httpClient,
		requestTimeout:  requestTimeout,
		userAgent:       cfg.UserAgent,
		logger:          logger,
		instrumentation: inst,
		tracer:          inst.Tracer("provider"),
	}, nil
}

// newGitHubClient wraps httpClient in a go-github client pointed at the configured API root.
func (f *ClientFactory) newGitHubClient(httpClient *http.Client) *gogithub.Client {
	gh := gogithub.NewClient(httpClient)
	if f.baseURL != nil {
		baseURL := *f.baseURL
		gh.BaseURL = &baseURL
	}
	if f.userAgent != "" {
		gh.UserAgent = f.userAgent
	}
	return gh
}

// NewClient returns a client authenticated with token.
// No request is made; an invalid token surfaces on the first call.
func (f *ClientFactory) NewClient(token string) (providers.Client, error) {
	if token == "" {
		return nil, providers.NewProviderError(providers.KindUnauthorized, opNewClient, 0, ErrEmptyToken)
	}

	// oauth2 picks the base transport up from the context
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, f.httpClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	return &Client{
		gh:              f.newGitHubClient(httpClient),
		token:           token,
		requestTimeout:  f.requestTimeout,
		logger:          f.logger,
		instrumentation: f.instrumentation,
		tracer:          f.tracer,
	}, nil
}

// HealthCheck verifies that the GitHub API is reachable.
// It performs an unauthenticated call to the rate limit endpoint.
//
// Security Considerations:
//   - This method is designed for server-side health monitoring
//   - DO NOT expose error details to untrusted clients
func (f *ClientFactory) HealthCheck(ctx context.Context) error {
	c := &Client{
		gh:              f.newGitHubClient(f.httpClient),
		requestTimeout:  f.requestTimeout,
		logger:          f.logger,
		instrumentation: f.instrumentation,
		tracer:          f.tracer,
	}

	err := c.call(ctx, opHealthCheck, func(ctx context.Context) (*gogithub.Response, error) {
		req, err := c.gh.NewRequest(http.MethodGet, "rate_limit", nil)
		if err != nil {
			return nil, err
		}
		return c.gh.Do(ctx, req, nil)
	})
	if err != nil {
		return fmt.Errorf("github api unreachable: %w", err)
	}
	return nil
}

// Client is a GitHub API client bound to one access token.
type Client struct {
	gh              *gogithub.Client
	token           string
	requestTimeout  time.Duration
	logger          *slog.Logger
	instrumentation *instrumentation.Instrumentation
	tracer          trace.Tracer
}

// AccessToken returns the token this client authenticates with.
func (c *Client) AccessToken() string {
	return c.token
}

// ensureContextTimeout ensures the context has a deadline, adding one if needed.
// Returns a new context with timeout and a cancel function that should be deferred.
// If the context already has a deadline, returns the original context with a no-op cancel.
func (c *Client) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

// call runs fn inside a span with a deadline, records metrics and translates
// any failure into a *providers.ProviderError.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) (*gogithub.Response, error)) error {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, providerName+"."+op)
	defer span.End()
	instrumentation.AddProviderAttributes(span, providerName, op)

	start := time.Now()
	resp, err := fn(ctx)
	durationMs := float64(time.Since(start).Microseconds()) / 1000

	statusCode := 0
	if resp != nil && resp.Response != nil {
		statusCode = resp.StatusCode
	}

	if err != nil {
		perr := translateError(op, statusCode, err)
		kind := perr.Kind.String()

		instrumentation.AddProviderResultAttributes(span, perr.StatusCode, kind)
		instrumentation.RecordError(span, perr)
		c.instrumentation.Metrics().RecordProviderAPICall(ctx, providerName, op, perr.StatusCode, durationMs, kind, perr)

		c.logger.Debug("GitHub API call failed",
			"operation", op,
			"status", perr.StatusCode,
			"error_kind", kind,
			"token_prefix", util.SafeTruncate(c.token, tokenPrefixLogLength),
			"error", err)
		return perr
	}

	instrumentation.AddProviderResultAttributes(span, statusCode, "")
	instrumentation.SetSpanSuccess(span)
	c.instrumentation.Metrics().RecordProviderAPICall(ctx, providerName, op, statusCode, durationMs, "", nil)

	return nil
}

// validatePathSegment rejects names that would alter the request path.
func validatePathSegment(op, kind, name string) error {
	if name == "" || len(name) > maxPathSegmentLength || strings.ContainsAny(name, "/?#%\\") {
		return providers.NewProviderError(providers.KindUnknown, op, 0,
			fmt.Errorf("%w: %s %q", ErrInvalidPathSegment, kind, name))
	}
	return nil
}

// FetchSelf fetches the authenticated user's profile from GitHub's /user endpoint.
// Every field of the response is returned, normalized to strings.
func (c *Client) FetchSelf(ctx context.Context) (map[string]string, error) {
	var raw map[string]any

	err := c.call(ctx, opFetchSelf, func(ctx context.Context) (*gogithub.Response, error) {
		req, err := c.gh.NewRequest(http.MethodGet, "user", nil)
		if err != nil {
			return nil, err
		}
		return c.gh.Do(ctx, req, &raw)
	})
	if err != nil {
		return nil, err
	}

	return providers.NormalizeAttributes(raw), nil
}

// IsPublicMember reports whether login publicly belongs to org.
func (c *Client) IsPublicMember(ctx context.Context, org, login string) (bool, error) {
	if err := validatePathSegment(opIsPublicMember, "organization", org); err != nil {
		return false, err
	}
	if err := validatePathSegment(opIsPublicMember, "login", login); err != nil {
		return false, err
	}

	var member bool
	err := c.call(ctx, opIsPublicMember, func(ctx context.Context) (*gogithub.Response, error) {
		var resp *gogithub.Response
		var err error
		member, resp, err = c.gh.Organizations.IsPublicMember(ctx, org, login)
		return resp, err
	})
	if err != nil {
		return false, err
	}
	return member, nil
}

// IsMember reports whether login belongs to org.
// GitHub only reveals concealed memberships to members of the organization.
func (c *Client) IsMember(ctx context.Context, org, login string) (bool, error) {
	if err := validatePathSegment(opIsMember, "organization", org); err != nil {
		return false, err
	}
	if err := validatePathSegment(opIsMember, "login", login); err != nil {
		return false, err
	}

	var member bool
	err := c.call(ctx, opIsMember, func(ctx context.Context) (*gogithub.Response, error) {
		var resp *gogithub.Response
		var err error
		member, resp, err = c.gh.Organizations.IsMember(ctx, org, login)
		return resp, err
	})
	if err != nil {
		return false, err
	}
	return member, nil
}

// ListTeamMembers lists the logins of a team addressed by its numeric ID,
// following pagination until every member has been read.
func (c *Client) ListTeamMembers(ctx context.Context, teamID int64) ([]string, error) {
	var logins []string

	err := c.call(ctx, opListTeamMembers, func(ctx context.Context) (*gogithub.Response, error) {
		page := 1
		for {
			u := fmt.Sprintf("teams/%d/members?per_page=%d&page=%d", teamID, defaultPageSize, page)
			req, err := c.gh.NewRequest(http.MethodGet, u, nil)
			if err != nil {
				return nil, err
			}

			var users []*gogithub.User
			resp, err := c.gh.Do(ctx, req, &users)
			if err != nil {
				return resp, err
			}

			logins = appendLogins(logins, users)
			if resp.NextPage == 0 {
				return resp, nil
			}
			page = resp.NextPage
		}
	})
	if err != nil {
		return nil, err
	}
	return logins, nil
}

// ListTeamMembersBySlug lists the logins of a team addressed by organization and slug.
func (c *Client) ListTeamMembersBySlug(ctx context.Context, org, slug string) ([]string, error) {
	if err := validatePathSegment(opListTeamMembersBySlug, "organization", org); err != nil {
		return nil, err
	}
	if err := validatePathSegment(opListTeamMembersBySlug, "team slug", slug); err != nil {
		return nil, err
	}

	var logins []string

	err := c.call(ctx, opListTeamMembersBySlug, func(ctx context.Context) (*gogithub.Response, error) {
		opts := &gogithub.TeamListTeamMembersOptions{
			ListOptions: gogithub.ListOptions{PerPage: defaultPageSize},
		}
		for {
			users, resp, err := c.gh.Teams.ListTeamMembersBySlug(ctx, org, slug, opts)
			if err != nil {
				return resp, err
			}

			logins = appendLogins(logins, users)
			if resp.NextPage == 0 {
				return resp, nil
			}
			opts.Page = resp.NextPage
		}
	})
	if err != nil {
		return nil, err
	}
	return logins, nil
}

// appendLogins appends the non-empty logins of users to logins.
func appendLogins(logins []string, users []*gogithub.User) []string {
	for _, user := range users {
		if login := user.GetLogin(); login != "" {
			logins = append(logins, login)
		}
	}
	return logins
}
