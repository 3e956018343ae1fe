// Package providers defines the provider API client contract and the error types
// that provider implementations return.
//
// A Client is an authenticated handle bound to a single credential token. It is
// built by a ClientFactory without contacting the network; the first real call
// is the first network round trip.
//
// Implementations are provided in subpackages:
//   - providers/github: GitHub REST API client (github.com, GitHub Enterprise)
//   - providers/mock: Mock client and factory for testing
//
// # Errors
//
// Every failed call returns a *ProviderError whose Kind classifies the failure.
// Callers that need to recover from one specific class must match on the kind:
//
//	members, err := client.ListTeamMembers(ctx, 42)
//	if providers.IsNotFound(err) {
//	    // team does not exist or is invisible to this token
//	}
//
// Matching on error text is never supported.
package providers
