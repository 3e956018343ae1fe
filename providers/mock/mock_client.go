// Package mock provides mock implementations of the providers interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/giantswarm/github-authz/providers"
)

// Compile-time checks
var (
	_ providers.Client        = (*MockClient)(nil)
	_ providers.ClientFactory = (*MockFactory)(nil)
)

// MockClient is a mock implementation of the providers.Client interface for testing
type MockClient struct {
	// FetchSelfFunc is called when FetchSelf() is invoked
	FetchSelfFunc func(ctx context.Context) (map[string]string, error)

	// IsPublicMemberFunc is called when IsPublicMember() is invoked
	IsPublicMemberFunc func(ctx context.Context, org, login string) (bool, error)

	// IsMemberFunc is called when IsMember() is invoked
	IsMemberFunc func(ctx context.Context, org, login string) (bool, error)

	// ListTeamMembersFunc is called when ListTeamMembers() is invoked
	ListTeamMembersFunc func(ctx context.Context, teamID int64) ([]string, error)

	// ListTeamMembersBySlugFunc is called when ListTeamMembersBySlug() is invoked
	ListTeamMembersBySlugFunc func(ctx context.Context, org, slug string) ([]string, error)

	// CallCounts tracks how many times each method was called
	CallCounts map[string]int

	// mu protects CallCounts from concurrent access
	mu sync.RWMutex
}

// NewMockClient creates a mock client whose profile is attrs and which
// belongs to no organization or team.
func NewMockClient(attrs map[string]string) *MockClient {
	return &MockClient{
		CallCounts: make(map[string]int),
		FetchSelfFunc: func(ctx context.Context) (map[string]string, error) {
			out := make(map[string]string, len(attrs))
			for k, v := range attrs {
				out[k] = v
			}
			return out, nil
		},
		IsPublicMemberFunc: func(ctx context.Context, org, login string) (bool, error) {
			return false, nil
		},
		IsMemberFunc: func(ctx context.Context, org, login string) (bool, error) {
			return false, nil
		},
		ListTeamMembersFunc: func(ctx context.Context, teamID int64) ([]string, error) {
			return nil, providers.NewProviderError(providers.KindNotFound, "list_team_members", 404,
				fmt.Errorf("team %d not found", teamID))
		},
		ListTeamMembersBySlugFunc: func(ctx context.Context, org, slug string) ([]string, error) {
			return nil, providers.NewProviderError(providers.KindNotFound, "list_team_members_by_slug", 404,
				fmt.Errorf("team %s/%s not found", org, slug))
		},
	}
}

// FetchSelf returns the authenticated user's attributes
func (m *MockClient) FetchSelf(ctx context.Context) (map[string]string, error) {
	// LOCK PATTERN: Lock only to update counter and read function reference.
	// The user function runs unlocked because it may call other mock methods.
	m.mu.Lock()
	m.CallCounts["FetchSelf"]++
	fn := m.FetchSelfFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, fmt.Errorf("FetchSelfFunc not configured")
	}
	return fn(ctx)
}

// IsPublicMember reports public organization membership
func (m *MockClient) IsPublicMember(ctx context.Context, org, login string) (bool, error) {
	m.mu.Lock()
	m.CallCounts["IsPublicMember"]++
	fn := m.IsPublicMemberFunc
	m.mu.Unlock()
	if fn == nil {
		return false, fmt.Errorf("IsPublicMemberFunc not configured")
	}
	return fn(ctx, org, login)
}

// IsMember reports organization membership
func (m *MockClient) IsMember(ctx context.Context, org, login string) (bool, error) {
	m.mu.Lock()
	m.CallCounts["IsMember"]++
	fn := m.IsMemberFunc
	m.mu.Unlock()
	if fn == nil {
		return false, fmt.Errorf("IsMemberFunc not configured")
	}
	return fn(ctx, org, login)
}

// ListTeamMembers lists the members of a team by ID
func (m *MockClient) ListTeamMembers(ctx context.Context, teamID int64) ([]string, error) {
	m.mu.Lock()
	m.CallCounts["ListTeamMembers"]++
	fn := m.ListTeamMembersFunc
	m.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("ListTeamMembersFunc not configured")
	}
	return fn(ctx, teamID)
}

// ListTeamMembersBySlug lists the members of a team by organization and slug
func (m *MockClient) ListTeamMembersBySlug(ctx context.Context, org, slug string) ([]string, error) {
	m.mu.Lock()
	m.CallCounts["ListTeamMembersBySlug"]++
	fn := m.ListTeamMembersBySlugFunc
	m.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("ListTeamMembersBySlugFunc not configured")
	}
	return fn(ctx, org, slug)
}

// ResetCallCounts resets all call counters
func (m *MockClient) ResetCallCounts() {
	m.mu.Lock()
	m.CallCounts = make(map[string]int)
	m.mu.Unlock()
}

// GetCallCount returns the number of times a method was called
func (m *MockClient) GetCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCounts[method]
}

// MockFactory is a mock providers.ClientFactory that hands out a fixed client
type MockFactory struct {
	// NewClientFunc is called when NewClient() is invoked
	NewClientFunc func(token string) (providers.Client, error)

	mu     sync.RWMutex
	tokens []string
}

// NewMockFactory creates a factory that returns client for every token
func NewMockFactory(client providers.Client) *MockFactory {
	return &MockFactory{
		NewClientFunc: func(token string) (providers.Client, error) {
			return client, nil
		},
	}
}

// NewClient records token and builds a client
func (f *MockFactory) NewClient(token string) (providers.Client, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	fn := f.NewClientFunc
	f.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("NewClientFunc not configured")
	}
	return fn(token)
}

// Calls returns how many clients were built
func (f *MockFactory) Calls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.tokens)
}

// Tokens returns the tokens clients were built with, in call order
func (f *MockFactory) Tokens() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.tokens))
	copy(out, f.tokens)
	return out
}
