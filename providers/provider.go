// Package providers defines the interface for identity provider API clients and
// the error taxonomy shared by all provider implementations.
package providers

import (
	"context"
)

// Client is an authenticated handle to a provider's API.
// A Client is scoped to exactly one credential token for its whole lifetime.
type Client interface {
	// FetchSelf returns the profile attributes of the authenticated caller.
	FetchSelf(ctx context.Context) (map[string]string, error)

	// IsPublicMember reports whether login is a public member of org.
	IsPublicMember(ctx context.Context, org, login string) (bool, error)

	// IsMember reports whether login is a member of org.
	// Depending on the provider this may require elevated scope.
	IsMember(ctx context.Context, org, login string) (bool, error)

	// ListTeamMembers returns the logins of all members of the team with the given ID.
	// Returns a ProviderError of kind KindNotFound when the team does not exist
	// or is not visible to the caller.
	ListTeamMembers(ctx context.Context, teamID int64) ([]string, error)

	// ListTeamMembersBySlug returns the logins of all members of the team
	// addressed by organization and slug. Not-found semantics match ListTeamMembers.
	ListTeamMembersBySlug(ctx context.Context, org, slug string) ([]string, error)
}

// ClientFactory builds authenticated clients from credential tokens.
// NewClient must not contact the network.
type ClientFactory interface {
	NewClient(token string) (Client, error)
}

// ClientFactoryFunc adapts an ordinary function to the ClientFactory interface.
type ClientFactoryFunc func(token string) (Client, error)

// NewClient calls f(token).
func (f ClientFactoryFunc) NewClient(token string) (Client, error) {
	return f(token)
}
