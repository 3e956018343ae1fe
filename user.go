package authz

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/giantswarm/github-authz/instrumentation"
	"github.com/giantswarm/github-authz/providers"
)

// Well-known GitHub profile attribute names.
const (
	AttrLogin      = "login"
	AttrName       = "name"
	AttrGravatarID = "gravatar_id"
	AttrEmail      = "email"
	AttrCompany    = "company"
)

// User is an authenticated GitHub account: its profile attributes and the
// token it authenticated with.
//
// A User is immutable. Equality and serialization cover the attributes and
// the token only; the API client is derived from the token on first use.
// A User is safe for concurrent use.
type User struct {
	attributes map[string]string
	token      string

	rt     *runtime
	client func() (providers.Client, error)
}

// NewUser returns a User for attributes already known to the caller.
// attributes is copied. A nil cfg uses the defaults.
func NewUser(attributes map[string]string, token string, cfg *Config) *User {
	return newUser(maps.Clone(attributes), token, newRuntime(cfg), nil)
}

// newUser takes ownership of attributes. A non-nil client is adopted as the
// memoized API client.
func newUser(attributes map[string]string, token string, rt *runtime, client providers.Client) *User {
	if attributes == nil {
		attributes = map[string]string{}
	}

	u := &User{
		attributes: attributes,
		token:      token,
		rt:         rt,
	}
	if client != nil {
		u.client = func() (providers.Client, error) { return client, nil }
	} else {
		u.client = sync.OnceValues(func() (providers.Client, error) {
			return rt.newClient(token)
		})
	}
	return u
}

// Load fetches the profile of the account token belongs to and returns it as
// a User. The client built for the lookup becomes the User's API client.
func Load(ctx context.Context, token string, cfg *Config) (*User, error) {
	rt := newRuntime(cfg)

	ctx, span := rt.tracer.Start(ctx, "authz.load")
	defer span.End()

	fail := func(reason string, err error) (*User, error) {
		instrumentation.RecordError(span, err)
		rt.metrics.RecordIdentityLoaded(ctx, false)
		rt.auditor.LogIdentityLoadFailed(ctx, reason)
		rt.logger.DebugContext(ctx, "Failed to load GitHub user", "reason", reason, "error", err)
		return nil, err
	}

	if token == "" {
		return fail("missing_token", ErrMissingToken)
	}

	client, err := rt.newClient(token)
	if err != nil {
		return fail(providers.KindOf(err).String(), err)
	}

	attributes, err := client.FetchSelf(ctx)
	if err != nil {
		return fail(providers.KindOf(err).String(), fmt.Errorf("failed to fetch user profile: %w", err))
	}

	u := newUser(attributes, token, rt, client)

	instrumentation.AddAuthorizationAttributes(span, "load", "", u.Login())
	instrumentation.SetSpanSuccess(span)
	rt.metrics.RecordIdentityLoaded(ctx, true)
	rt.auditor.LogIdentityLoaded(ctx, u.Login())
	rt.logger.DebugContext(ctx, "Loaded GitHub user", "login", u.Login())

	return u, nil
}

// Attribute returns the named profile attribute and whether it is present.
// A nil User has no attributes.
func (u *User) Attribute(name string) (string, bool) {
	if u == nil {
		return "", false
	}
	v, ok := u.attributes[name]
	return v, ok
}

// Attributes returns a copy of all profile attributes.
func (u *User) Attributes() map[string]string {
	if u == nil {
		return nil
	}
	return maps.Clone(u.attributes)
}

func (u *User) attribute(name string) string {
	v, _ := u.Attribute(name)
	return v
}

// Login returns the GitHub login, or "" if absent.
func (u *User) Login() string { return u.attribute(AttrLogin) }

// Name returns the display name, or "" if absent.
func (u *User) Name() string { return u.attribute(AttrName) }

// GravatarID returns the Gravatar ID, or "" if absent.
func (u *User) GravatarID() string { return u.attribute(AttrGravatarID) }

// Email returns the public email address, or "" if absent.
func (u *User) Email() string { return u.attribute(AttrEmail) }

// Company returns the company, or "" if absent.
func (u *User) Company() string { return u.attribute(AttrCompany) }

// Token returns the credential token.
func (u *User) Token() string {
	if u == nil {
		return ""
	}
	return u.token
}

// APIClient returns the provider client authenticated with the User's token.
// The first call builds it without contacting the network; every later call,
// including concurrent ones, returns the same client and the same error.
func (u *User) APIClient() (providers.Client, error) {
	if u == nil || u.client == nil {
		return nil, ErrNoClientFactory
	}
	return u.client()
}

// Equal reports whether u and other have the same attributes and token.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.token == other.token && maps.Equal(u.attributes, other.attributes)
}

// String returns the login. The token is never included.
// A nil User prints as "<nil>".
func (u *User) String() string {
	if u == nil {
		return "<nil>"
	}
	return u.Login()
}
