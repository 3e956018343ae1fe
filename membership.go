package authz

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/giantswarm/github-authz/instrumentation"
	"github.com/giantswarm/github-authz/providers"
)

// Membership check names, used in spans, metrics and audit records.
const (
	CheckPublicOrganizationMember = "public_organization_member"
	CheckOrganizationMember       = "organization_member"
	CheckTeamMember               = "team_member"
)

// Metric outcomes of a membership check.
const (
	outcomeAllowed = "allowed"
	outcomeDenied  = "denied"
	outcomeError   = "error"
)

type checkFunc func(ctx context.Context, client providers.Client, login string) (bool, error)

// IsPublicOrganizationMember reports whether the User is a public member of org.
// Provider errors are returned unchanged.
func (u *User) IsPublicOrganizationMember(ctx context.Context, org string) (bool, error) {
	if org == "" {
		return false, fmt.Errorf("%w: organization name is empty", ErrInvalidArgument)
	}

	return u.authorize(ctx, CheckPublicOrganizationMember, org, func(ctx context.Context, client providers.Client, login string) (bool, error) {
		return client.IsPublicMember(ctx, org, login)
	})
}

// IsOrganizationMember reports whether the User is a member of org, public or
// concealed. Concealed memberships are only visible to tokens of organization
// members. Provider errors are returned unchanged.
func (u *User) IsOrganizationMember(ctx context.Context, org string) (bool, error) {
	if org == "" {
		return false, fmt.Errorf("%w: organization name is empty", ErrInvalidArgument)
	}

	return u.authorize(ctx, CheckOrganizationMember, org, func(ctx context.Context, client providers.Client, login string) (bool, error) {
		return client.IsMember(ctx, org, login)
	})
}

// IsTeamMember reports whether the User belongs to the team with the given ID.
//
// A team that does not exist or is hidden from the User's token yields false
// without an error. Every other provider error is returned unchanged.
func (u *User) IsTeamMember(ctx context.Context, teamID int64) (bool, error) {
	if teamID <= 0 {
		return false, fmt.Errorf("%w: team ID %d", ErrInvalidArgument, teamID)
	}

	return u.authorize(ctx, CheckTeamMember, strconv.FormatInt(teamID, 10), func(ctx context.Context, client providers.Client, login string) (bool, error) {
		logins, err := client.ListTeamMembers(ctx, teamID)
		return teamIncludes(logins, login, err)
	})
}

// IsTeamMemberBySlug is IsTeamMember for a team addressed by organization and slug.
func (u *User) IsTeamMemberBySlug(ctx context.Context, org, slug string) (bool, error) {
	if org == "" || slug == "" {
		return false, fmt.Errorf("%w: organization and team slug are required", ErrInvalidArgument)
	}

	return u.authorize(ctx, CheckTeamMember, org+"/"+slug, func(ctx context.Context, client providers.Client, login string) (bool, error) {
		logins, err := client.ListTeamMembersBySlug(ctx, org, slug)
		return teamIncludes(logins, login, err)
	})
}

// teamIncludes turns a team listing into a membership decision.
// Not-found means the team is invisible to the caller, which is a denial.
func teamIncludes(logins []string, login string, err error) (bool, error) {
	if err != nil {
		if providers.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	// GitHub logins are case-insensitive
	return slices.ContainsFunc(logins, func(l string) bool {
		return strings.EqualFold(l, login)
	}), nil
}

// authorize runs one membership check and records its outcome.
func (u *User) authorize(ctx context.Context, check, target string, fn checkFunc) (bool, error) {
	if u == nil || u.rt == nil {
		return false, ErrNoClientFactory
	}
	rt := u.rt

	login := u.Login()

	ctx, span := rt.tracer.Start(ctx, "authz.is_"+check)
	defer span.End()
	instrumentation.AddAuthorizationAttributes(span, check, target, login)

	allowed, err := u.check(ctx, check, login, fn)

	rt.auditor.LogMembershipCheck(ctx, login, check, target, allowed, err)

	if err != nil {
		instrumentation.RecordError(span, err)
		rt.metrics.RecordAuthorizationCheck(ctx, check, outcomeError)
		rt.logger.DebugContext(ctx, "Membership check failed",
			"check", check,
			"target", target,
			"login", login,
			"error_kind", providers.KindOf(err).String(),
			"error", err)
		return false, err
	}

	outcome := outcomeDenied
	if allowed {
		outcome = outcomeAllowed
	}
	instrumentation.SetSpanAttributes(span, attribute.Bool(instrumentation.AttrAuthzAllowed, allowed))
	instrumentation.SetSpanSuccess(span)
	rt.metrics.RecordAuthorizationCheck(ctx, check, outcome)
	rt.logger.DebugContext(ctx, "Membership check",
		"check", check,
		"target", target,
		"login", login,
		"allowed", allowed)

	return allowed, nil
}

func (u *User) check(ctx context.Context, check, login string, fn checkFunc) (bool, error) {
	if login == "" {
		return false, ErrMissingLogin
	}
	if err := ctx.Err(); err != nil {
		return false, providers.NewProviderError(providers.KindCanceled, check, 0, err)
	}

	client, err := u.APIClient()
	if err != nil {
		return false, err
	}

	return fn(ctx, client, login)
}
