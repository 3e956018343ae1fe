package authz

import "errors"

var (
	// ErrMissingToken is returned by Load when no credential token is supplied.
	ErrMissingToken = errors.New("authz: token is empty")

	// ErrMissingLogin is returned by membership checks on a User without a login attribute.
	ErrMissingLogin = errors.New("authz: user has no login")

	// ErrInvalidArgument is returned when an organization, team slug or team ID is unusable.
	ErrInvalidArgument = errors.New("authz: invalid argument")

	// ErrNoClientFactory is returned by a User that was not created through
	// NewUser, Load, decoding or a Codec.
	ErrNoClientFactory = errors.New("authz: user is not bound to a client factory")

	// ErrInvalidSealedUser is returned by Codec.Open for values it cannot open.
	ErrInvalidSealedUser = errors.New("authz: invalid sealed user")
)
