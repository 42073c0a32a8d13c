package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/mongoextract/internal/audit"
	"github.com/2beens/mongoextract/internal/auth"
	"github.com/2beens/mongoextract/internal/cache"
	"github.com/2beens/mongoextract/internal/mongodb"
	"github.com/2beens/mongoextract/internal/telemetry/metrics"
	"github.com/2beens/mongoextract/internal/telemetry/tracing"
	"github.com/2beens/mongoextract/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ViewSampleLimit = 3
	EditSampleLimit = 1
	SearchLimit     = 10

	closeTimeout = 5 * time.Second
)

type CollectionPreview struct {
	Name      string            `json:"name"`
	Documents []json.RawMessage `json:"documents"`
}

type Handler struct {
	connections    *mongodb.Connections
	dialer         Dialer
	catalogCache   *cache.CatalogCache
	recorder       *audit.Recorder
	metricsManager *metrics.Manager
}

func NewHandler(
	connections *mongodb.Connections,
	dialer Dialer,
	catalogCache *cache.CatalogCache,
	recorder *audit.Recorder,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		connections:    connections,
		dialer:         dialer,
		catalogCache:   catalogCache,
		recorder:       recorder,
		metricsManager: metricsManager,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/connections", h.HandleConnections).Methods("GET", "OPTIONS").Name("connections")
	apiRouter.HandleFunc("/databases", h.HandleDatabases).Methods("POST", "OPTIONS").Name("databases")
	apiRouter.HandleFunc("/collections", h.HandleCollections).Methods("POST", "OPTIONS").Name("collections")
	apiRouter.HandleFunc("/view", h.HandleView).Methods("POST", "OPTIONS").Name("view")
	apiRouter.HandleFunc("/search", h.HandleSearch).Methods("POST", "OPTIONS").Name("search")
	apiRouter.HandleFunc("/edit", h.HandleEdit).Methods("POST", "OPTIONS").Name("edit")
	apiRouter.HandleFunc("/extract", h.HandleExtract).Methods("POST", "OPTIONS").Name("extract")
}

func identity(ctx context.Context) string {
	if session := auth.SessionFromContext(ctx); session != nil {
		return session.Identity
	}
	return ""
}

// resolve writes the 400 response itself and returns false on failure.
func (h *Handler) resolve(w http.ResponseWriter, span trace.Span, req ConnectionRequest) (string, bool) {
	uri, err := h.connections.Resolve(req.MongoURI, req.PreconfiguredMongoURIID)
	if err != nil {
		var resolveErr *mongodb.ResolveError
		if errors.As(err, &resolveErr) {
			pkg.WriteJSONError(w, resolveErr.Status, resolveErr.Message)
		} else {
			pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		}
		span.SetStatus(codes.Error, "resolve-connection")
		return "", false
	}
	return uri, true
}

func badRequest(w http.ResponseWriter, span trace.Span, message string) {
	pkg.WriteJSONError(w, http.StatusBadRequest, message)
	span.SetStatus(codes.Error, message)
}

func driverFailure(w http.ResponseWriter, span trace.Span, errMsg string, err error) {
	log.Errorf("%s: %s", errMsg, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, errMsg)
	pkg.WriteJSONErrorWithMessage(w, http.StatusInternalServerError, errMsg, err.Error())
}

// withStore dials uri, runs fn and always disconnects, also when the request context is gone.
func (h *Handler) withStore(ctx context.Context, uri string, fn func(store MongoStore) error) error {
	store, err := h.dialer.Dial(ctx, uri)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warnf("close mongo connection: %s", err)
		}
	}()
	return fn(store)
}

func (h *Handler) countCatalogCache(outcome string) {
	if h.metricsManager != nil {
		h.metricsManager.CounterCatalogCache.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) cachedDatabases(uri string) ([]string, bool) {
	if h.catalogCache == nil {
		return nil, false
	}
	names, found := h.catalogCache.Databases(uri)
	if found {
		h.countCatalogCache("hit")
	} else {
		h.countCatalogCache("miss")
	}
	return names, found
}

func (h *Handler) cachedCollections(uri, database string) ([]string, bool) {
	if h.catalogCache == nil {
		return nil, false
	}
	names, found := h.catalogCache.Collections(uri, database)
	if found {
		h.countCatalogCache("hit")
	} else {
		h.countCatalogCache("miss")
	}
	return names, found
}

func (h *Handler) HandleConnections(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONOK(w, map[string][]mongodb.ConnectionOption{
		"connections": h.connections.Options(),
	})
}

func (h *Handler) HandleDatabases(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "explorerHandler.databases")
	defer span.End()

	var req ConnectionRequest
	if err := decodeRequest(w, r, &req); err != nil {
		badRequest(w, span, err.Error())
		return
	}
	uri, ok := h.resolve(w, span, req)
	if !ok {
		return
	}

	if names, found := h.cachedDatabases(uri); found {
		span.SetStatus(codes.Ok, "cache-hit")
		pkg.WriteJSONOK(w, map[string][]string{"databases": names})
		return
	}

	var names []string
	if err := h.withStore(ctx, uri, func(store MongoStore) error {
		var err error
		names, err = store.ListDatabaseNames(ctx)
		return err
	}); err != nil {
		driverFailure(w, span, "Failed to load databases", err)
		return
	}

	if h.catalogCache != nil {
		if err := h.catalogCache.SetDatabases(uri, names); err != nil {
			log.Warnf("cache databases: %s", err)
		}
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONOK(w, map[string][]string{"databases": names})
}

func (h *Handler) HandleCollections(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "explorerHandler.collections")
	defer span.End()

	var req DatabaseRequest
	if err := decodeRequest(w, r, &req); err != nil {
		badRequest(w, span, err.Error())
		return
	}
	uri, ok := h.resolve(w, span, req.ConnectionRequest)
	if !ok {
		return
	}
	if req.DatabaseName == "" {
		badRequest(w, span, "Database name is required")
		return
	}
	span.SetAttributes(attribute.String("database", req.DatabaseName))

	if names, found := h.cachedCollections(uri, req.DatabaseName); found {
		span.SetStatus(codes.Ok, "cache-hit")
		pkg.WriteJSONOK(w, map[string][]string{"collections": names})
		return
	}

	var names []string
	if err := h.withStore(ctx, uri, func(store MongoStore) error {
		var err error
		names, err = store.ListCollectionNames(ctx, req.DatabaseName)
		return err
	}); err != nil {
		driverFailure(w, span, "Failed to load collections", err)
		return
	}

	if h.catalogCache != nil {
		if err := h.catalogCache.SetCollections(uri, req.DatabaseName, names); err != nil {
			log.Warnf("cache collections: %s", err)
		}
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONOK(w, map[string][]string{"collections": names})
}

func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "explorerHandler.view")
	defer span.End()

	var req CollectionRequest
	if err := decodeRequest(w, r, &req); err != nil {
		badRequest(w, span, err.Error())
		return
	}
	uri, ok := h.resolve(w, span, req.ConnectionRequest)
	if !ok {
		return
	}
	if req.DatabaseName == "" {
		badRequest(w, span, "Database name is required")
		return
	}
	if !req.AllCollections.Bool() && req.CollectionName == "" {
		badRequest(w, span, "Collection name is required when not loading all collections")
		return
	}

	previews := []CollectionPreview{}
	if err := h.withStore(ctx, uri, func(store MongoStore) error {
		names := []string{req.CollectionName}
		if req.AllCollections.Bool() {
			var err error
			if names, err = store.ListCollectionNames(ctx, req.DatabaseName); err != nil {
				return err
			}
		}

		for _, name := range names {
			documents, err := store.SampleDocuments(ctx, req.DatabaseName, name, ViewSampleLimit)
			if err != nil {
				return err
			}
			rendered, err := mongodb.DocumentsToJSON(documents)
			if err != nil {
				return err
			}
			previews = append(previews, CollectionPreview{Name: name, Documents: rendered})
		}
		return nil
	}); err != nil {
		driverFailure(w, span, "Failed to load collection previews", err)
		return
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONOK(w, map[string][]CollectionPreview{"collections": previews})
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "explorerHandler.search")
	defer span.End()

	var req SearchRequest
	if err := decodeRequest(w, r, &req); err != nil {
		badRequest(w, span, err.Error())
		return
	}
	uri, ok := h.resolve(w, span, req.ConnectionRequest)
	if !ok {
		return
	}
	if req.DatabaseName == "" {
		badRequest(w, span, "Database name is required")
		return
	}
	if req.CollectionName == "" {
		badRequest(w, span, "Collection name is required")
		return
	}

	var filter bson.D
	if req.Mode == "text" {
		if req.Text == "" {
			badRequest(w, span, "Search text is required for text mode.")
			return
		}
		var err error
		if filter, err = mongodb.ContainsTextFilter(req.Text); err != nil {
			badRequest(w, span, err.Error())
			return
		}
	} else {
		var err error
		if filter, err = mongodb.ParseFilter(req.Query); err != nil {
			badRequest(w, span, err.Error())
			return
		}
	}
	span.SetAttributes(attribute.String("mode", req.Mode))

	var rendered []json.RawMessage
	if err := h.withStore(ctx, uri, func(store MongoStore) error {
		documents, err := store.Find(ctx, req.DatabaseName, req.CollectionName, filter, SearchLimit)
		if err != nil {
			return err
		}
		rendered, err = mongodb.DocumentsToJSON(documents)
		return err
	}); err != nil {
		driverFailure(w, span, "Failed to execute search", err)
		return
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONOK(w, map[string][]json.RawMessage{"documents": rendered})
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "explorerHandler.edit")
	defer span.End()

	var req EditRequest
	if err := decodeRequest(w, r, &req); err != nil {
		badRequest(w, span, err.Error())
		return
	}
	uri, ok := h.resolve(w, span, req.ConnectionRequest)
	if !ok {
		return
	}
	if req.DatabaseName == "" {
		badRequest(w, span, "Database name is required")
		return
	}
	if req.CollectionName == "" {
		badRequest(w, span, "Collection name is required")
		return
	}

	if req.Action != "insert" {
		var sample json.RawMessage
		if err := h.withStore(ctx, uri, func(store MongoStore) error {
			documents, err := store.SampleDocuments(ctx, req.DatabaseName, req.CollectionName, EditSampleLimit)
			if err != nil || len(documents) == 0 {
				return err
			}
			sample, err = mongodb.ToJSON(documents[0])
			return err
		}); err != nil {
			driverFailure(w, span, "Failed to process the edit request", err)
			return
		}

		span.SetStatus(codes.Ok, "sample")
		pkg.WriteJSONOK(w, map[string]json.RawMessage{"sample": sampleOrNull(sample)})
		return
	}

	document, err := mongodb.ParseDocument(req.Document)
	if err != nil {
		badRequest(w, span, mongodb.ErrDocumentNotObject.Error())
		return
	}

	var insertedID any
	if err := h.withStore(ctx, uri, func(store MongoStore) error {
		var err error
		insertedID, err = store.InsertOne(ctx, req.DatabaseName, req.CollectionName, document)
		return err
	}); err != nil {
		driverFailure(w, span, "Failed to process the edit request", err)
		return
	}

	if h.catalogCache != nil {
		h.catalogCache.InvalidateCollections(uri, req.DatabaseName)
	}
	if h.metricsManager != nil {
		h.metricsManager.CounterInsertedDocuments.Inc()
	}
	h.recorder.Record(ctx, r, audit.KindInsert, identity(ctx),
		fmt.Sprintf("%s/%s %v", req.DatabaseName, req.CollectionName, insertedID))

	span.SetStatus(codes.Ok, "inserted")
	pkg.WriteJSONOK(w, InsertResponse{Success: true, InsertedID: insertedID})
}

type InsertResponse struct {
	Success    bool `json:"success"`
	InsertedID any  `json:"insertedId"`
}

func sampleOrNull(sample json.RawMessage) json.RawMessage {
	if len(sample) == 0 {
		return json.RawMessage("null")
	}
	return sample
}
