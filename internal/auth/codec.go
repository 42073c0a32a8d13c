package auth

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

var ErrEncoding = errors.New("encode session token")

const tokenSeparator = "."

var (
	_ TokenCodec = (*HMACCodec)(nil)
	_ TokenCodec = (*JWTCodec)(nil)
)

// TokenCodec turns a session payload into a cookie-safe string and back.
// Decode returns nil for every kind of invalid token.
type TokenCodec interface {
	Encode(payload SessionPayload) (string, error)
	Decode(token string) *SessionPayload
}

var payloadValidator = validator.New()

// payloadSchema has pointer fields so that missing keys can be told apart from zero values.
type payloadSchema struct {
	Identity   *string `json:"identity" validate:"required,min=1"`
	RememberMe *bool   `json:"rememberMe" validate:"required"`
	IssuedAt   *int64  `json:"issuedAt" validate:"required,gt=0"`
	ExpiresAt  *int64  `json:"expiresAt" validate:"required,gt=0"`
}

// HMACCodec signs base64url(JSON payload) with HMAC-SHA256:
//
//	<base64url(payload)>.<base64url(mac)>
type HMACCodec struct {
	store *CredentialStore
	// Now can be replaced in tests
	Now func() time.Time
}

func NewHMACCodec(store *CredentialStore) *HMACCodec {
	return &HMACCodec{
		store: store,
		Now:   time.Now,
	}
}

func (c *HMACCodec) Encode(payload SessionPayload) (string, error) {
	secret, err := c.store.SigningSecret()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal payload: %w", ErrEncoding, err)
	}

	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	signature := base64.RawURLEncoding.EncodeToString(sign(secret, encodedPayload))

	return encodedPayload + tokenSeparator + signature, nil
}

func (c *HMACCodec) Decode(token string) *SessionPayload {
	secret, err := c.store.SigningSecret()
	if err != nil {
		return nil
	}

	parts := strings.Split(token, tokenSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}
	encodedPayload, encodedSignature := parts[0], parts[1]

	signature, err := base64.RawURLEncoding.DecodeString(encodedSignature)
	if err != nil {
		return nil
	}
	if !hmac.Equal(signature, sign(secret, encodedPayload)) {
		return nil
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return nil
	}

	payload, err := parsePayload(payloadBytes)
	if err != nil {
		log.Tracef("session token with valid signature rejected: %s", err)
		return nil
	}

	return acceptPayload(payload, c.store.Identifier(), c.Now())
}

func sign(secret []byte, encodedPayload string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(encodedPayload))
	return mac.Sum(nil)
}

func parsePayload(payloadBytes []byte) (*SessionPayload, error) {
	decoder := json.NewDecoder(bytes.NewReader(payloadBytes))
	decoder.DisallowUnknownFields()

	var schema payloadSchema
	if err := decoder.Decode(&schema); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	if decoder.More() {
		return nil, errors.New("trailing data after payload")
	}
	if err := payloadValidator.Struct(schema); err != nil {
		return nil, fmt.Errorf("validate payload: %w", err)
	}

	return &SessionPayload{
		Identity:   *schema.Identity,
		RememberMe: *schema.RememberMe,
		IssuedAt:   *schema.IssuedAt,
		ExpiresAt:  *schema.ExpiresAt,
	}, nil
}

// acceptPayload applies the checks shared by all codecs once integrity is established.
// A payload issued after now is rejected the same way an expired one is.
func acceptPayload(payload *SessionPayload, identifier string, now time.Time) *SessionPayload {
	if !payload.hasLegalWindow() {
		return nil
	}
	if identifier == "" || payload.Identity != identifier {
		return nil
	}
	if payload.IssuedAt > now.Unix() || payload.Expired(now) {
		return nil
	}
	return payload
}
