package security

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	if len(key) != KeySize {
		t.Errorf("GenerateKey() returned key of length %d, want %d", len(key), KeySize)
	}

	key2, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if bytes.Equal(key, key2) {
		t.Error("GenerateKey() returned identical keys")
	}
}

func TestNewEncryptor(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "valid 32-byte key", key: make([]byte, 32)},
		{name: "nil key", key: nil, wantErr: true},
		{name: "empty key", key: []byte{}, wantErr: true},
		{name: "invalid key length (16 bytes)", key: make([]byte, 16), wantErr: true},
		{name: "invalid key length (64 bytes)", key: make([]byte, 64), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncryptor(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEncryptor() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && enc == nil {
				t.Error("NewEncryptor() returned nil encryptor")
			}
		})
	}
}

func newTestEncryptor(t *testing.T) *Encryptor {
	t.Helper()

	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	enc, err := NewEncryptor(key)
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}
	return enc
}

func TestEncryptor_SealOpen(t *testing.T) {
	enc := newTestEncryptor(t)
	aad := []byte("identity")

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{name: "simple", plaintext: []byte("hello world")},
		{name: "empty", plaintext: []byte{}},
		{name: "json", plaintext: []byte(`{"attributes":{"login":"john"},"token":"the_token"}`)},
		{name: "unicode", plaintext: []byte("Hello 世界 🌍")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := enc.Seal(tt.plaintext, aad)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}

			if len(tt.plaintext) > 0 && bytes.Contains([]byte(sealed), tt.plaintext) {
				t.Error("Seal() output contains the plaintext")
			}
			if _, err := base64.RawURLEncoding.DecodeString(sealed); err != nil {
				t.Errorf("Seal() did not return URL-safe base64: %v", err)
			}

			opened, err := enc.Open(sealed, aad)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(opened, tt.plaintext) {
				t.Errorf("Open() = %q, want %q", opened, tt.plaintext)
			}
		})
	}
}

func TestEncryptor_Seal_UniqueNonce(t *testing.T) {
	enc := newTestEncryptor(t)

	a, err := enc.Seal([]byte("same"), nil)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	b, err := enc.Seal([]byte("same"), nil)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if a == b {
		t.Error("Seal() produced identical output for repeated plaintext")
	}
}

func TestEncryptor_Open_InvalidData(t *testing.T) {
	enc := newTestEncryptor(t)

	valid, err := enc.Seal([]byte("payload"), []byte("a"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	tampered := []byte(valid)
	tampered[len(tampered)-2] ^= 'A' ^ 'B'

	tests := []struct {
		name   string
		sealed string
		aad    []byte
	}{
		{name: "invalid base64", sealed: "not valid base64!!!", aad: []byte("a")},
		{name: "too short", sealed: base64.RawURLEncoding.EncodeToString([]byte("short")), aad: []byte("a")},
		{name: "tampered", sealed: string(tampered), aad: []byte("a")},
		{name: "wrong additional data", sealed: valid, aad: []byte("b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Open(tt.sealed, tt.aad); err == nil {
				t.Error("Open() should return error for invalid data")
			}
		})
	}
}

func TestEncryptor_Open_WrongKey(t *testing.T) {
	sealed, err := newTestEncryptor(t).Seal([]byte("secret data"), nil)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	_, err = newTestEncryptor(t).Open(sealed, nil)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Open() with wrong key error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDeriveKey(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	key1, err := DeriveKey(secret, "purpose-a")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if len(key1) != KeySize {
		t.Errorf("DeriveKey() returned key of length %d, want %d", len(key1), KeySize)
	}

	again, err := DeriveKey(secret, "purpose-a")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if !bytes.Equal(key1, again) {
		t.Error("DeriveKey() is not deterministic")
	}

	key2, err := DeriveKey(secret, "purpose-b")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if bytes.Equal(key1, key2) {
		t.Error("DeriveKey() returned the same key for different info")
	}

	if _, err := NewEncryptor(key1); err != nil {
		t.Errorf("derived key rejected by NewEncryptor: %v", err)
	}
}

func TestDeriveKey_ShortSecret(t *testing.T) {
	if _, err := DeriveKey([]byte("short"), "info"); err == nil {
		t.Error("DeriveKey() should reject short secrets")
	}
}

func TestKeyFromBase64(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	decoded, err := KeyFromBase64(KeyToBase64(key))
	if err != nil {
		t.Fatalf("KeyFromBase64() error = %v", err)
	}
	if !bytes.Equal(decoded, key) {
		t.Error("KeyFromBase64() did not round-trip the key")
	}
}

func TestKeyFromBase64_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "invalid base64", encoded: "not-valid-base64!!!"},
		{name: "wrong length", encoded: base64.StdEncoding.EncodeToString(make([]byte, 16))},
		{name: "empty", encoded: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := KeyFromBase64(tt.encoded); err == nil {
				t.Error("KeyFromBase64() should return error")
			}
		})
	}
}
