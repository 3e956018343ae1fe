// Package github implements the providers.Client interface on top of the
// GitHub REST API using go-github.
//
// A ClientFactory holds shared settings (API root, base transport, timeouts,
// logging and instrumentation) and hands out one Client per access token.
// Building a client never touches the network; a bad token surfaces as a
// KindUnauthorized ProviderError on the first call.
//
// # GitHub Enterprise
//
// Point BaseURL at the Enterprise REST root:
//
//	factory, err := github.NewClientFactory(&github.Config{
//	    BaseURL: "https://github.example.com/api/v3",
//	})
//
// # Membership Semantics
//
// GitHub answers membership queries with 204 for members and 404 for
// non-members, so IsPublicMember and IsMember report false without an error
// for non-members. Team listings return a KindNotFound error when the team
// does not exist or is hidden from the caller. Listings follow pagination
// and count as a single call in metrics and traces.
//
// # Rate Limiting
//
// Primary and secondary rate limit responses are reported as KindRateLimited.
// The client does not retry; callers decide whether to back off.
//
// # Security Considerations
//
// Access tokens are never logged or attached to spans. Debug logs carry at
// most a short token prefix for correlation.
package github
