// Package security provides the security primitives of the github-authz
// library: sealing values at rest and audit logging.
//
// # Encryption
//
// Encryptor seals values with AES-256-GCM. Keys are either generated with
// GenerateKey or derived from an operator secret with DeriveKey (HKDF-SHA256).
// Sealed values are URL-safe base64 and can be stored in cookies.
//
//	key, err := security.DeriveKey([]byte(os.Getenv("SESSION_SECRET")), "github-authz identity v1")
//	if err != nil {
//	    return err
//	}
//	enc, err := security.NewEncryptor(key)
//
// # Audit Logging
//
// Auditor writes one structured "security_audit" record per authorization
// decision or identity load. Logins are hashed (SHA-256, truncated) before
// they are written; tokens are never passed to the auditor.
package security
