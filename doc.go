// Package authz represents an authenticated GitHub account and answers
// organization and team membership questions on its behalf.
//
// A User is built either from attributes the caller already knows (for
// example after an OAuth callback) or by Load, which asks GitHub who the
// token belongs to:
//
//	user, err := authz.Load(ctx, token, &authz.Config{
//	    Logger:             logger,
//	    EnableAuditLogging: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	ok, err := user.IsOrganizationMember(ctx, "giantswarm")
//	if err != nil {
//	    // Provider failure: not a denial
//	    return err
//	}
//
// # Membership Semantics
//
// Every check makes one uncached provider call. Organization checks return
// the provider's answer as is and propagate every error. Team checks treat a
// team that does not exist or is hidden from the token as "not a member";
// all other errors propagate. A canceled context is always an error.
//
// # API Client
//
// The provider client is built lazily from the User's own token on first
// use and reused afterwards. Building it never touches the network.
//
// # Serialization
//
// A User marshals to JSON and gob as its attributes and token only. Use a
// Codec to seal it before storing it anywhere a client can read:
//
//	codec, err := authz.NewCodec(sessionSecret, cfg)
//	sealed, err := codec.Seal(ctx, user)
//	// ...
//	user, err = codec.Open(ctx, sealed)
package authz
