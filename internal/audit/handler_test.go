package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Add(context.Context, *Event) error { return errors.New("db down") }

func (failingStore) List(context.Context, int) ([]Event, error) { return nil, errors.New("db down") }

func newAuditRouter(store Store) *mux.Router {
	r := mux.NewRouter()
	NewHandler(NewRecorder(store)).SetupRoutes(r)
	return r
}

func TestHandler_List(t *testing.T) {
	repo := NewMemoryRepo(0)
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	for _, kind := range []Kind{KindLoginSuccess, KindExtract, KindLogout} {
		require.NoError(t, repo.Add(context.Background(), &Event{Kind: kind, CreatedAt: now}))
	}
	r := newAuditRouter(repo)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 3)
	assert.Equal(t, KindLogout, resp.Events[0].Kind)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audit?limit=2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 2)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audit?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"limit must be a number"}`, rr.Body.String())
}

func TestHandler_List_Empty(t *testing.T) {
	rr := httptest.NewRecorder()
	newAuditRouter(NewMemoryRepo(0)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"events":[]}`, rr.Body.String())
}

func TestHandler_List_StoreError(t *testing.T) {
	rr := httptest.NewRecorder()
	newAuditRouter(failingStore{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to load audit events","message":"db down"}`, rr.Body.String())
}
