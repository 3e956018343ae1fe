// Package testutil provides testing utilities and helpers for the github-authz library.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// TestToken is the token accepted by FakeGitHub unless configured otherwise
const TestToken = "the_token"

// GenerateTestAttributes returns the profile attributes of a typical GitHub user.
func GenerateTestAttributes() map[string]string {
	return map[string]string{
		"login":       "john",
		"name":        "John Doe",
		"gravatar_id": "38581cb351a52002548f40f8066cfecg",
		"email":       "john@doe.com",
		"company":     "Doe, Inc.",
	}
}

// RecordedRequest is a request observed by FakeGitHub
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
}

// FakeGitHub is an in-process stand-in for the GitHub REST API.
//
// Fields must be configured before the first request is served.
type FakeGitHub struct {
	Server *httptest.Server

	// Token is the only accepted bearer token. Empty accepts any token.
	Token string

	// User is returned by GET /user
	User map[string]any

	// PublicMembers maps organization -> publicly visible member logins
	PublicMembers map[string][]string

	// Members maps organization -> all member logins
	Members map[string][]string

	// Teams maps legacy team ID -> member logins
	Teams map[int64][]string

	// TeamSlugs maps "org/slug" -> member logins
	TeamSlugs map[string][]string

	// PageSize forces pagination of team member listings when > 0
	PageSize int

	// StatusOverrides maps a request path to a forced error status
	StatusOverrides map[string]int

	// RateLimited makes every request fail with GitHub's primary rate limit response
	RateLimited bool

	// Delay is slept before serving each request
	Delay time.Duration

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeGitHub starts a fake GitHub API server. It is closed when the test ends.
func NewFakeGitHub(t *testing.T) *FakeGitHub {
	t.Helper()

	f := &FakeGitHub{
		Token:           TestToken,
		User:            map[string]any{},
		PublicMembers:   map[string][]string{},
		Members:         map[string][]string{},
		Teams:           map[int64][]string{},
		TeamSlugs:       map[string][]string{},
		StatusOverrides: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", f.handleUser)
	mux.HandleFunc("GET /orgs/{org}/public_members/{login}", f.handleMembership(func() map[string][]string { return f.PublicMembers }))
	mux.HandleFunc("GET /orgs/{org}/members/{login}", f.handleMembership(func() map[string][]string { return f.Members }))
	mux.HandleFunc("GET /teams/{id}/members", f.handleTeamByID)
	mux.HandleFunc("GET /orgs/{org}/teams/{slug}/members", f.handleTeamBySlug)
	mux.HandleFunc("GET /rate_limit", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"resources": map[string]any{}})
	})

	f.Server = httptest.NewServer(f.middleware(mux))
	t.Cleanup(f.Server.Close)

	return f
}

// URL returns the API root of the fake server
func (f *FakeGitHub) URL() string {
	return f.Server.URL
}

// Requests returns a copy of all recorded requests
func (f *FakeGitHub) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

// RequestCount returns how many requests hit path
func (f *FakeGitHub) RequestCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, r := range f.requests {
		if r.Path == path {
			count++
		}
	}
	return count
}

func (f *FakeGitHub) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		})
		f.mu.Unlock()

		if f.Delay > 0 {
			select {
			case <-time.After(f.Delay):
			case <-r.Context().Done():
				return
			}
		}

		if f.RateLimited {
			w.Header().Set("X-RateLimit-Limit", "5000")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
			writeMessage(w, http.StatusForbidden, "API rate limit exceeded for user ID 1.")
			return
		}

		if f.Token != "" && r.Header.Get("Authorization") != "Bearer "+f.Token && r.URL.Path != "/rate_limit" {
			writeMessage(w, http.StatusUnauthorized, "Bad credentials")
			return
		}

		if status, ok := f.StatusOverrides[r.URL.Path]; ok {
			writeMessage(w, status, http.StatusText(status))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (f *FakeGitHub) handleUser(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, f.User)
}

func (f *FakeGitHub) handleMembership(members func() map[string][]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logins := members()[r.PathValue("org")]
		if containsFold(logins, r.PathValue("login")) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeMessage(w, http.StatusNotFound, "Not Found")
	}
}

func (f *FakeGitHub) handleTeamByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}
	logins, ok := f.Teams[id]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}
	f.writeMemberPage(w, r, logins)
}

func (f *FakeGitHub) handleTeamBySlug(w http.ResponseWriter, r *http.Request) {
	logins, ok := f.TeamSlugs[r.PathValue("org")+"/"+r.PathValue("slug")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}
	f.writeMemberPage(w, r, logins)
}

// writeMemberPage writes one page of members with a GitHub style Link header.
func (f *FakeGitHub) writeMemberPage(w http.ResponseWriter, r *http.Request, logins []string) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	pageLogins := logins
	if f.PageSize > 0 {
		start := min((page-1)*f.PageSize, len(logins))
		end := min(start+f.PageSize, len(logins))
		pageLogins = logins[start:end]
		if end < len(logins) {
			w.Header().Set("Link", fmt.Sprintf(`<%s%s?page=%d>; rel="next"`, f.Server.URL, r.URL.Path, page+1))
		}
	}

	users := make([]map[string]any, 0, len(pageLogins))
	for i, login := range pageLogins {
		users = append(users, map[string]any{"login": login, "id": i + 1, "type": "User"})
	}
	writeJSON(w, http.StatusOK, users)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"message":           message,
		"documentation_url": "https://docs.github.com/rest",
	})
}

// SumInt64 collects reader and returns the sum of all data points of the named int64 counter.
func SumInt64(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q has data type %T, want metricdata.Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}
