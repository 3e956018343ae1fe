package security

// Event type constants for security audit logging.
const (
	// EventMembershipCheck is logged for every organization or team membership decision
	EventMembershipCheck = "membership_check"

	// EventIdentityLoaded is logged when an identity is loaded from the provider
	EventIdentityLoaded = "identity_loaded"

	// EventIdentityLoadFailed is logged when the provider rejects a token or is unreachable
	EventIdentityLoadFailed = "identity_load_failed"

	// EventSealedIdentityRejected is logged when a sealed identity fails to open (tampering or key rotation)
	EventSealedIdentityRejected = "sealed_identity_rejected"
)
