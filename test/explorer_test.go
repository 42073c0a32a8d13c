//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	testDatabase = "shop"
	ordersCount  = 7
	usersCount   = 2
)

type fakeOrder struct {
	Item     string `fake:"{noun}" bson:"item"`
	Customer string `fake:"{name}" bson:"customer"`
	Price    int    `fake:"{number:1,500}" bson:"price"`
	Status   string `fake:"{randomstring:[pending,shipped]}" bson:"status"`
}

type previewResponse struct {
	Collections []struct {
		Name      string            `json:"name"`
		Documents []json.RawMessage `json:"documents"`
	} `json:"collections"`
}

func (s *IntegrationTestSuite) seedShop(ctx context.Context) {
	t := s.T()
	db := s.mongoClient.Database(testDatabase)
	require.NoError(t, db.Drop(ctx))

	faker := gofakeit.New(42)
	var orders []any
	for i := 0; i < ordersCount; i++ {
		var order fakeOrder
		require.NoError(t, faker.Struct(&order))
		orders = append(orders, order)
	}
	// one marker document for the text search
	orders[0] = fakeOrder{Item: "Golden Kettle", Customer: "Ada", Price: 42, Status: "paid"}

	_, err := db.Collection("orders").InsertMany(ctx, orders)
	require.NoError(t, err)
	_, err = db.Collection("users").InsertMany(ctx, []any{
		bson.D{{Key: "name", Value: faker.Name()}},
		bson.D{{Key: "name", Value: faker.Name()}},
	})
	require.NoError(t, err)
}

func (s *IntegrationTestSuite) loggedInClient() *http.Client {
	client := s.newClient()
	resp := login(s.T(), client, testIdentifier, testPassword, false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	return client
}

func shopRequest(extra map[string]any) map[string]any {
	body := map[string]any{
		"preconfiguredMongoUriId": "preconfigured-1",
		"databaseName":            testDatabase,
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func (s *IntegrationTestSuite) TestExplorer_Catalog() {
	t := s.T()
	ctx := context.Background()
	s.seedShop(ctx)
	client := s.loggedInClient()

	resp := do(t, client, http.MethodGet, "/api/connections", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"connections":[{"id":"preconfigured-1","name":"Test Mongo"}]}`, string(resp.Body))

	var dbs struct {
		Databases []string `json:"databases"`
	}
	resp = do(t, client, http.MethodPost, "/api/databases", map[string]string{"preconfiguredMongoUriId": "preconfigured-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.decode(t, &dbs)
	assert.Contains(t, dbs.Databases, testDatabase)

	// custom uri works the same way
	resp = do(t, client, http.MethodPost, "/api/databases", map[string]string{"mongoUri": s.mongoURI})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var colls struct {
		Collections []string `json:"collections"`
	}
	resp = do(t, client, http.MethodPost, "/api/collections", shopRequest(nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.decode(t, &colls)
	assert.Equal(t, []string{"orders", "users"}, colls.Collections)

	resp = do(t, client, http.MethodPost, "/api/databases", map[string]string{"mongoUri": "mongodb://localhost:1"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "Failed to load databases")
}

func (s *IntegrationTestSuite) TestExplorer_View() {
	t := s.T()
	s.seedShop(context.Background())
	client := s.loggedInClient()

	var preview previewResponse
	resp := do(t, client, http.MethodPost, "/api/view", shopRequest(map[string]any{"allCollections": true}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.decode(t, &preview)
	require.Len(t, preview.Collections, 2)
	assert.Equal(t, "orders", preview.Collections[0].Name)
	assert.Len(t, preview.Collections[0].Documents, 3)
	assert.Equal(t, "users", preview.Collections[1].Name)
	assert.Len(t, preview.Collections[1].Documents, usersCount)

	resp = do(t, client, http.MethodPost, "/api/view", shopRequest(nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestExplorer_SearchAndInsert() {
	t := s.T()
	s.seedShop(context.Background())
	client := s.loggedInClient()

	var found struct {
		Documents []map[string]any `json:"documents"`
	}
	resp := do(t, client, http.MethodPost, "/api/search", shopRequest(map[string]any{
		"collectionName": "orders",
		"mode":           "json",
		"query":          `{"status": "paid"}`,
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	resp.decode(t, &found)
	require.Len(t, found.Documents, 1)
	assert.Equal(t, "Golden Kettle", found.Documents[0]["item"])

	resp = do(t, client, http.MethodPost, "/api/search", shopRequest(map[string]any{
		"collectionName": "orders",
		"mode":           "text",
		"text":           "golden KETTLE",
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	resp.decode(t, &found)
	require.Len(t, found.Documents, 1)

	resp = do(t, client, http.MethodPost, "/api/search", shopRequest(map[string]any{"collectionName": "orders"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.decode(t, &found)
	assert.Len(t, found.Documents, ordersCount)

	resp = do(t, client, http.MethodPost, "/api/edit", shopRequest(map[string]any{
		"collectionName": "orders",
		"action":         "insert",
		"document":       map[string]any{"item": "Silver Spoon", "status": "new"},
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	var inserted struct {
		Success    bool   `json:"success"`
		InsertedID string `json:"insertedId"`
	}
	resp.decode(t, &inserted)
	assert.True(t, inserted.Success)
	assert.Len(t, inserted.InsertedID, 24)

	resp = do(t, client, http.MethodPost, "/api/search", shopRequest(map[string]any{
		"collectionName": "orders",
		"query":          `{"item": "Silver Spoon"}`,
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.decode(t, &found)
	require.Len(t, found.Documents, 1)
	assert.Equal(t, map[string]any{"$oid": inserted.InsertedID}, found.Documents[0]["_id"])

	var sample struct {
		Sample map[string]any `json:"sample"`
	}
	resp = do(t, client, http.MethodPost, "/api/edit", shopRequest(map[string]any{"collectionName": "users"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.decode(t, &sample)
	assert.Contains(t, sample.Sample, "name")

	resp = do(t, client, http.MethodPost, "/api/edit", shopRequest(map[string]any{
		"collectionName": "orders",
		"action":         "insert",
		"document":       []int{1, 2},
	}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func readZip(t *testing.T, body []byte) map[string][]json.RawMessage {
	t.Helper()
	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)

	entries := make(map[string][]json.RawMessage)
	for _, f := range archive.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		var documents []json.RawMessage
		require.NoError(t, json.Unmarshal(content, &documents))
		entries[f.Name] = documents
	}
	return entries
}

func (s *IntegrationTestSuite) TestExtract() {
	t := s.T()
	s.seedShop(context.Background())
	client := s.loggedInClient()

	resp := do(t, client, http.MethodPost, "/api/extract", shopRequest(map[string]any{"collectionName": "orders"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="orders.json"`, resp.Header.Get("Content-Disposition"))
	var documents []json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Body, &documents))
	assert.Len(t, documents, ordersCount)

	resp = do(t, client, http.MethodPost, "/api/extract", shopRequest(map[string]any{"allCollections": true}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	entries := readZip(t, resp.Body)
	require.Len(t, entries, 2)
	assert.Len(t, entries["orders.json"], ordersCount)
	assert.Len(t, entries["users.json"], usersCount)

	resp = do(t, client, http.MethodPost, "/api/extract", shopRequest(map[string]any{"allCollections": "true", "limitTo3": "true"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries = readZip(t, resp.Body)
	assert.Len(t, entries["orders.json"], 3)
	assert.Len(t, entries["users.json"], usersCount)

	var auditResp struct {
		Events []struct {
			Kind string `json:"kind"`
		} `json:"events"`
	}
	resp = do(t, client, http.MethodGet, "/api/audit?limit=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.decode(t, &auditResp)
	require.Len(t, auditResp.Events, 3)
	for _, e := range auditResp.Events {
		assert.Equal(t, "extract", e.Kind)
	}
}
