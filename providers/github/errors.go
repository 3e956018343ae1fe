package github

import (
	"context"
	"errors"
	"net"
	"net/http"

	gogithub "github.com/google/go-github/v66/github"

	"github.com/giantswarm/github-authz/providers"
)

// translateError maps a go-github or transport error onto the provider error taxonomy.
// statusCode is the response status observed by the caller, if any.
func translateError(op string, statusCode int, err error) *providers.ProviderError {
	var (
		rateErr  *gogithub.RateLimitError
		abuseErr *gogithub.AbuseRateLimitError
		respErr  *gogithub.ErrorResponse
		netErr   net.Error
	)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return providers.NewProviderError(providers.KindCanceled, op, statusCode, err)

	case errors.As(err, &rateErr):
		return providers.NewProviderError(providers.KindRateLimited, op, responseStatus(rateErr.Response, statusCode), err)

	case errors.As(err, &abuseErr):
		return providers.NewProviderError(providers.KindRateLimited, op, responseStatus(abuseErr.Response, statusCode), err)

	case errors.As(err, &respErr):
		status := responseStatus(respErr.Response, statusCode)
		return providers.NewProviderError(kindForStatus(status), op, status, err)

	case errors.As(err, &netErr):
		return providers.NewProviderError(providers.KindNetwork, op, statusCode, err)

	default:
		if statusCode != 0 {
			return providers.NewProviderError(kindForStatus(statusCode), op, statusCode, err)
		}
		return providers.NewProviderError(providers.KindUnknown, op, 0, err)
	}
}

// responseStatus returns resp's status code, or fallback when resp is nil.
func responseStatus(resp *http.Response, fallback int) int {
	if resp != nil {
		return resp.StatusCode
	}
	return fallback
}

// kindForStatus classifies an HTTP error status.
func kindForStatus(status int) providers.ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return providers.KindNotFound
	case status == http.StatusUnauthorized:
		return providers.KindUnauthorized
	case status == http.StatusForbidden:
		return providers.KindForbidden
	case status == http.StatusTooManyRequests:
		return providers.KindRateLimited
	case status >= http.StatusInternalServerError:
		return providers.KindServer
	default:
		return providers.KindUnknown
	}
}
