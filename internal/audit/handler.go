package audit

import (
	"net/http"
	"strconv"

	"github.com/2beens/mongoextract/internal/telemetry/tracing"
	"github.com/2beens/mongoextract/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type ListResponse struct {
	Events []Event `json:"events"`
}

type Handler struct {
	recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/audit", h.HandleList).Methods("GET", "OPTIONS").Name("audit")
}

// HandleList returns the most recent events, newest first. ?limit=N, capped at MaxListLimit.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "auditHandler.list")
	defer span.End()

	limit := DefaultListLimit
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil {
			span.SetStatus(codes.Error, "bad-limit")
			pkg.WriteJSONError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = parsed
	}

	events, err := h.recorder.List(ctx, ClampLimit(limit))
	if err != nil {
		log.Errorf("list audit events: %s", err)
		span.SetStatus(codes.Error, err.Error())
		pkg.WriteJSONErrorWithMessage(w, http.StatusInternalServerError, "Failed to load audit events", err.Error())
		return
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONOK(w, ListResponse{Events: events})
}
