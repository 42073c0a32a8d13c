package explorer

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/mongoextract/internal/audit"
	"github.com/2beens/mongoextract/internal/extract"
	"github.com/2beens/mongoextract/internal/telemetry/tracing"
	"github.com/2beens/mongoextract/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const extractFailed = "Failed to extract data"

// attachmentWriter sends the attachment headers on the first write only,
// so a failure before any byte is produced can still become a JSON error.
type attachmentWriter struct {
	w           http.ResponseWriter
	contentType string
	fileName    string
	started     bool
}

func (a *attachmentWriter) Write(p []byte) (int, error) {
	if !a.started {
		a.started = true
		a.w.Header().Set("Content-Type", a.contentType)
		a.w.Header().Set("Content-Disposition", contentDisposition(a.fileName))
		a.w.WriteHeader(http.StatusOK)
	}
	return a.w.Write(p)
}

func contentDisposition(fileName string) string {
	return `attachment; filename="` + fileName + `"`
}

func (h *Handler) countExtraction(format string) {
	if h.metricsManager != nil {
		h.metricsManager.CounterExtractions.WithLabelValues(format).Inc()
	}
}

func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "explorerHandler.extract")
	defer span.End()

	var req ExtractRequest
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
		badRequest(w, span, "Collection name is required when not extracting all collections")
		return
	}

	extractReq := extract.Request{
		Database:       req.DatabaseName,
		Collection:     req.CollectionName,
		AllCollections: req.AllCollections.Bool(),
		LimitTo3:       req.LimitTo3.Bool(),
	}

	var format string
	var collectionsCount int
	var body *attachmentWriter
	err := h.withStore(ctx, uri, func(store MongoStore) error {
		names, err := extract.CollectionNames(ctx, store, extractReq)
		if err != nil {
			return err
		}
		collectionsCount = len(names)
		span.SetAttributes(attribute.Int("collections", collectionsCount))

		if len(names) == 1 {
			format = "json"
			documents, err := extract.Fetch(ctx, store, extractReq, names[0])
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := extract.WriteJSON(&buf, documents); err != nil {
				return err
			}
			w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
			body = &attachmentWriter{w: w, contentType: pkg.ContentType.JSON, fileName: extract.JSONFileName(names[0])}
			_, err = buf.WriteTo(body)
			return err
		}

		format = "zip"
		body = &attachmentWriter{w: w, contentType: pkg.ContentType.Zip, fileName: extract.ArchiveFileName}
		return extract.WriteZip(ctx, body, store, extractReq, names)
	})
	if err != nil {
		if body == nil || !body.started {
			driverFailure(w, span, extractFailed, err)
			return
		}
		// headers are gone, the client gets a truncated attachment
		log.Errorf("extract %s stream interrupted: %s", req.DatabaseName, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "stream-interrupted")
		return
	}

	h.countExtraction(format)
	h.recorder.Record(ctx, r, audit.KindExtract, identity(ctx),
		fmt.Sprintf("%s: %d collection(s) as %s, limitTo3=%t", req.DatabaseName, collectionsCount, format, extractReq.LimitTo3))
	span.SetStatus(codes.Ok, format)
}
