package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrNotConfigured      = errors.New("admin identifier and password must be configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const signingKeyInfo = "admin-session-signing-key"

// CredentialStore holds the single administrator account. It is built once at
// startup and never mutated afterwards.
type CredentialStore struct {
	identifier string
	password   string
	secret     []byte
}

func NewCredentialStore(identifier, password string) *CredentialStore {
	s := &CredentialStore{
		identifier: strings.TrimSpace(identifier),
		password:   strings.TrimSpace(password),
	}
	if s.configured() {
		s.secret = deriveSecret(s.identifier, s.password)
	}
	return s
}

func (s *CredentialStore) configured() bool {
	return s.identifier != "" && s.password != ""
}

// Credentials returns the configured identifier and password.
func (s *CredentialStore) Credentials() (string, string, error) {
	if !s.configured() {
		return "", "", ErrNotConfigured
	}
	return s.identifier, s.password, nil
}

// Identifier returns the configured identifier, or an empty string.
func (s *CredentialStore) Identifier() string {
	if !s.configured() {
		return ""
	}
	return s.identifier
}

// SigningSecret returns the MAC key derived from "identifier:password".
func (s *CredentialStore) SigningSecret() ([]byte, error) {
	if !s.configured() {
		return nil, ErrNotConfigured
	}
	secret := make([]byte, len(s.secret))
	copy(secret, s.secret)
	return secret, nil
}

// Check compares the supplied credentials with the configured ones in constant time.
func (s *CredentialStore) Check(identifier, password string) error {
	if !s.configured() {
		return ErrNotConfigured
	}

	idOK := equalConstantTime(strings.TrimSpace(identifier), s.identifier)
	passOK := equalConstantTime(strings.TrimSpace(password), s.password)
	if idOK&passOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// equalConstantTime hashes both sides first, so the comparison does not leak length.
func equalConstantTime(a, b string) int {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:])
}

func deriveSecret(identifier, password string) []byte {
	kdf := hkdf.New(sha256.New, []byte(identifier+":"+password), nil, []byte(signingKeyInfo))
	secret := make([]byte, sha256.Size)
	if _, err := io.ReadFull(kdf, secret); err != nil {
		// hkdf can only fail when more than 255*hash size bytes are requested
		panic(err)
	}
	return secret
}
