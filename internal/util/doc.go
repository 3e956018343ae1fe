// Package util provides small string helpers shared by the github-authz packages.
//
// Key utilities:
//   - SafeTruncate: prefix of a secret that is safe to log
//   - NormalizeURL: canonical form of a configured API root
package util
