// Package testutil provides testing utilities and fixtures for the
// github-authz library. FakeGitHub serves the subset of the GitHub REST API
// the library talks to, so clients can be exercised end to end without
// network access.
package testutil
