//go:build integration

package test

import (
	"net/http"
	"net/url"
	"time"

	"github.com/2beens/mongoextract/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestLogin() {
	cases := map[string]struct {
		identifier, password string
		rememberMe           any
		expectedStatusCode   int
		expectedMaxAge       int
	}{
		"good creds": {
			identifier: testIdentifier, password: testPassword, rememberMe: false,
			expectedStatusCode: http.StatusOK, expectedMaxAge: 43200,
		},
		"good creds, remember me as string": {
			identifier: testIdentifier, password: testPassword, rememberMe: "true",
			expectedStatusCode: http.StatusOK, expectedMaxAge: 30 * 24 * 60 * 60,
		},
		"wrong password": {
			identifier: testIdentifier, password: "wrong", rememberMe: false,
			expectedStatusCode: http.StatusUnauthorized,
		},
		"missing password": {
			identifier: testIdentifier, password: "  ", rememberMe: false,
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for name, tc := range cases {
		s.Run(name, func() {
			t := s.T()
			client := s.newClient()
			resp := login(t, client, tc.identifier, tc.password, tc.rememberMe)
			require.Equal(t, tc.expectedStatusCode, resp.StatusCode, string(resp.Body))

			cookies := (&http.Response{Header: resp.Header}).Cookies()
			if tc.expectedStatusCode != http.StatusOK {
				assert.Empty(t, cookies)
				return
			}
			require.Len(t, cookies, 1)
			assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
			assert.Equal(t, tc.expectedMaxAge, cookies[0].MaxAge)
			assert.True(t, cookies[0].HttpOnly)
			assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
		})
	}
}

func (s *IntegrationTestSuite) TestSessionLifecycle() {
	t := s.T()
	client := s.newClient()

	resp := do(t, client, http.MethodGet, "/admin/collections", nil)
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login?from="+url.QueryEscape("/admin/collections"), resp.Header.Get("Location"))

	resp = login(t, client, testIdentifier, testPassword, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, client, http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	var session auth.SessionResponse
	resp = do(t, client, http.MethodGet, "/api/auth/session", nil)
	resp.decode(t, &session)
	require.True(t, session.Authenticated)
	require.NotNil(t, session.Session)
	assert.False(t, session.Session.RememberMe)
	expiresAt, err := time.Parse(time.RFC3339, session.Session.ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(auth.ShortWindow), expiresAt, time.Minute)

	resp = do(t, client, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, client, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = do(t, client, http.MethodPost, "/api/databases", map[string]string{"preconfiguredMongoUriId": "preconfigured-1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestLoginRateLimit() {
	t := s.T()
	client := s.newClient()

	for i := 0; i < loginRateLimitPerMin; i++ {
		resp := login(t, client, testIdentifier, "wrong", false)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := login(t, client, testIdentifier, testPassword, false)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
