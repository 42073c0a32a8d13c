//go:build integration

package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r apiResponse) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func do(t *testing.T, client *http.Client, method, path string, body any) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, serverEndpoint+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}
}

func login(t *testing.T, client *http.Client, identifier, password string, rememberMe any) apiResponse {
	t.Helper()
	return do(t, client, http.MethodPost, "/api/auth/login", map[string]any{
		"identifier": identifier,
		"password":   password,
		"rememberMe": rememberMe,
	})
}
