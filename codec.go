package authz

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/giantswarm/github-authz/instrumentation"
	"github.com/giantswarm/github-authz/security"
)

// userData is the serialized form of a User.
type userData struct {
	Attributes map[string]string `json:"attributes"`
	Token      string            `json:"token"`
}

func (u *User) data() userData {
	return userData{Attributes: u.attributes, Token: u.token}
}

// validUTF8 reports the first attribute or token that JSON cannot carry unchanged.
func (d userData) validUTF8() error {
	if !utf8.ValidString(d.Token) {
		return fmt.Errorf("%w: token is not valid UTF-8", ErrInvalidArgument)
	}
	for name, value := range d.Attributes {
		if !utf8.ValidString(name) || !utf8.ValidString(value) {
			return fmt.Errorf("%w: attribute %q is not valid UTF-8", ErrInvalidArgument, name)
		}
	}
	return nil
}

func encodeGob(d userData) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte) (userData, error) {
	var d userData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return userData{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return d, nil
}

// bind replaces u with a fresh User built from d and bound to rt.
func (u *User) bind(d userData, rt *runtime) {
	*u = *newUser(d.Attributes, d.Token, rt, nil)
}

// MarshalJSON encodes the attributes and the token.
// The output contains the credential; seal it with a Codec before storing it.
// Attributes or tokens that are not valid UTF-8 fail with ErrInvalidArgument,
// since JSON would silently replace their invalid bytes.
func (u *User) MarshalJSON() ([]byte, error) {
	d := u.data()
	if err := d.validUTF8(); err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// UnmarshalJSON decodes a User encoded by MarshalJSON. The result uses the
// default Config; use a Codec to bind a specific one.
func (u *User) UnmarshalJSON(data []byte) error {
	var d userData
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("failed to decode user: %w", err)
	}
	u.bind(d, newRuntime(nil))
	return nil
}

// GobEncode encodes the attributes and the token.
func (u *User) GobEncode() ([]byte, error) {
	return encodeGob(u.data())
}

// GobDecode decodes a User encoded by GobEncode with the default Config.
func (u *User) GobDecode(data []byte) error {
	d, err := decodeGob(data)
	if err != nil {
		return err
	}
	u.bind(d, newRuntime(nil))
	return nil
}

// codecInfo separates Codec keys from other keys derived from the same secret.
// It is also the additional data authenticated with every sealed value.
const codecInfo = "github-authz sealed user v1"

// Codec seals Users into opaque strings suitable for cookies or session
// stores, and opens them back bound to a Config.
type Codec struct {
	encryptor *security.Encryptor
	rt        *runtime
}

// NewCodec returns a Codec whose key is derived from secret.
// Opened Users use cfg; a nil cfg uses the defaults.
func NewCodec(secret []byte, cfg *Config) (*Codec, error) {
	key, err := security.DeriveKey(secret, codecInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to derive codec key: %w", err)
	}

	encryptor, err := security.NewEncryptor(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	return &Codec{
		encryptor: encryptor,
		rt:        newRuntime(cfg),
	}, nil
}

// Seal encrypts u's attributes and token. The gob form is sealed, so any
// byte string survives the round trip.
func (c *Codec) Seal(ctx context.Context, u *User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: nil user", ErrInvalidArgument)
	}

	ctx, span := c.rt.tracer.Start(ctx, "authz.seal")
	defer span.End()
	instrumentation.AddEncryptionAttributes(span, "seal")

	start := time.Now()
	defer func() {
		c.rt.metrics.RecordEncryptionOperation(ctx, "seal", float64(time.Since(start).Microseconds())/1000)
	}()

	plaintext, err := encodeGob(u.data())
	if err != nil {
		instrumentation.RecordError(span, err)
		return "", err
	}

	sealed, err := c.encryptor.Seal(plaintext, []byte(codecInfo))
	if err != nil {
		instrumentation.RecordError(span, err)
		return "", fmt.Errorf("failed to seal user: %w", err)
	}

	instrumentation.SetSpanSuccess(span)
	return sealed, nil
}

// Open decrypts a value produced by Seal with the same secret.
// Tampered values and values sealed under another secret fail with ErrInvalidSealedUser.
func (c *Codec) Open(ctx context.Context, sealed string) (*User, error) {
	ctx, span := c.rt.tracer.Start(ctx, "authz.open")
	defer span.End()
	instrumentation.AddEncryptionAttributes(span, "open")

	start := time.Now()
	defer func() {
		c.rt.metrics.RecordEncryptionOperation(ctx, "open", float64(time.Since(start).Microseconds())/1000)
	}()

	plaintext, err := c.encryptor.Open(sealed, []byte(codecInfo))
	if err != nil {
		reason := "malformed"
		if errors.Is(err, security.ErrDecryptionFailed) {
			reason = "decryption_failed"
		}
		instrumentation.RecordError(span, err)
		c.rt.auditor.LogSealedIdentityRejected(ctx, reason)
		return nil, fmt.Errorf("%w: %w", ErrInvalidSealedUser, err)
	}

	d, err := decodeGob(plaintext)
	if err != nil {
		instrumentation.RecordError(span, err)
		c.rt.auditor.LogSealedIdentityRejected(ctx, "malformed")
		return nil, fmt.Errorf("%w: %w", ErrInvalidSealedUser, err)
	}

	instrumentation.SetSpanSuccess(span)
	return newUser(d.Attributes, d.Token, c.rt, nil), nil
}
