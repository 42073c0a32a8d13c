package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

type sessionClaims struct {
	RememberMe *bool `json:"rememberMe"`
	jwt.RegisteredClaims
}

// JWTCodec carries the session payload as an HS256 JWT (sub, iat, exp, rememberMe).
type JWTCodec struct {
	store *CredentialStore
	// Now can be replaced in tests
	Now func() time.Time
}

func NewJWTCodec(store *CredentialStore) *JWTCodec {
	return &JWTCodec{
		store: store,
		Now:   time.Now,
	}
}

func (c *JWTCodec) Encode(payload SessionPayload) (string, error) {
	secret, err := c.store.SigningSecret()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	rememberMe := payload.RememberMe
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RememberMe: &rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Identity,
			IssuedAt:  jwt.NewNumericDate(time.Unix(payload.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(payload.ExpiresAt, 0)),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign jwt: %w", ErrEncoding, err)
	}
	return signed, nil
}

func (c *JWTCodec) Decode(token string) *SessionPayload {
	secret, err := c.store.SigningSecret()
	if err != nil || token == "" {
		return nil
	}

	identifier := c.store.Identifier()
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithSubject(identifier),
	)
	if err != nil {
		log.Tracef("session jwt rejected: %s", err)
		return nil
	}
	if !parsed.Valid || claims.RememberMe == nil || claims.IssuedAt == nil {
		return nil
	}

	return acceptPayload(&SessionPayload{
		Identity:   claims.Subject,
		RememberMe: *claims.RememberMe,
		IssuedAt:   claims.IssuedAt.Unix(),
		ExpiresAt:  claims.ExpiresAt.Unix(),
	}, identifier, c.Now())
}
