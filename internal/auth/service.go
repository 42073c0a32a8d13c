package auth

import (
	"fmt"
	"net/http"
	"time"
)

const (
	SessionCookieName = "admin-session"
	DefaultLoginPath  = "/login"
)

// Service issues, reads and clears the session cookie. It keeps no per-session state.
type Service struct {
	store        *CredentialStore
	codec        TokenCodec
	secureCookie bool
	loginPath    string
	// Now can be replaced in tests
	Now func() time.Time
}

func NewService(store *CredentialStore, codec TokenCodec, secureCookie bool) *Service {
	return &Service{
		store:        store,
		codec:        codec,
		secureCookie: secureCookie,
		loginPath:    DefaultLoginPath,
		Now:          time.Now,
	}
}

// NewCodec returns the codec for the configured token format ("hmac" or "jwt").
func NewCodec(format string, store *CredentialStore) (TokenCodec, error) {
	switch format {
	case "", "hmac":
		return NewHMACCodec(store), nil
	case "jwt":
		return NewJWTCodec(store), nil
	default:
		return nil, fmt.Errorf("unknown session token format: %s", format)
	}
}

// Login checks the credentials and returns the session cookie to set.
func (s *Service) Login(identifier, password string, rememberMe bool) (*http.Cookie, error) {
	configuredIdentifier, _, err := s.store.Credentials()
	if err != nil {
		return nil, err
	}

	if err := s.store.Check(identifier, password); err != nil {
		return nil, err
	}

	payload := NewSessionPayload(configuredIdentifier, s.Now(), rememberMe)
	token, err := s.codec.Encode(payload)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(Window(rememberMe) / time.Second),
		Expires:  payload.ExpiresAtTime(),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Logout returns a cookie that clears the session.
func (s *Service) Logout() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // serialized as Max-Age=0
		Expires:  time.Unix(0, 0).UTC(),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// Session returns the valid session carried by the request, or nil.
func (s *Service) Session(r *http.Request) *SessionPayload {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return s.codec.Decode(cookie.Value)
}

// RequireSession returns the session, or redirects to the login page and returns false.
func (s *Service) RequireSession(w http.ResponseWriter, r *http.Request) (*SessionPayload, bool) {
	session := s.Session(r)
	if session == nil {
		http.Redirect(w, r, s.loginPath, http.StatusTemporaryRedirect)
		return nil, false
	}
	return session, true
}

// RequireSessionHandler wraps next so that it only runs with a valid session.
func (s *Service) RequireSessionHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.RequireSession(w, r); !ok {
			return
		}
		next.ServeHTTP(w, r)
	})
}
