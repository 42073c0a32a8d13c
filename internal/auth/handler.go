package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/mongoextract/internal/audit"
	"github.com/2beens/mongoextract/internal/telemetry/metrics"
	"github.com/2beens/mongoextract/internal/telemetry/tracing"
	"github.com/2beens/mongoextract/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const maxLoginBodyBytes = 1 << 14

type LoginRequest struct {
	Identifier *string          `json:"identifier"`
	Password   *string          `json:"password"`
	RememberMe pkg.FlexibleBool `json:"rememberMe"`
}

type SessionInfo struct {
	RememberMe bool   `json:"rememberMe"`
	ExpiresAt  string `json:"expiresAt"`
}

type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Session       *SessionInfo `json:"session,omitempty"`
}

type CsrfResponse struct {
	CsrfToken *string `json:"csrfToken"`
}

type Handler struct {
	service        *Service
	recorder       *audit.Recorder
	metricsManager *metrics.Manager
}

func NewHandler(service *Service, recorder *audit.Recorder, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		recorder:       recorder,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the auth endpoints. loginMiddleware (rate limiting) wraps login only.
func (h *Handler) SetupRoutes(r *mux.Router, loginMiddleware ...mux.MiddlewareFunc) {
	authRouter := r.PathPrefix("/api/auth").Subrouter()

	var login http.Handler = http.HandlerFunc(h.HandleLogin)
	for i := len(loginMiddleware) - 1; i >= 0; i-- {
		login = loginMiddleware[i](login)
	}

	authRouter.Handle("/login", login).Methods("POST", "OPTIONS").Name("auth-login")
	authRouter.HandleFunc("/logout", h.HandleLogout).Methods("POST", "OPTIONS").Name("auth-logout")
	authRouter.HandleFunc("/session", h.HandleSession).Methods("GET", "OPTIONS").Name("auth-session")
	authRouter.HandleFunc("/csrf", h.HandleCsrf).Methods("GET", "OPTIONS").Name("auth-csrf")
}

func (h *Handler) countLogin(result string) {
	if h.metricsManager != nil {
		h.metricsManager.CounterLogins.WithLabelValues(result).Inc()
	}
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var loginReq LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)).Decode(&loginReq); err != nil {
		log.Debugf("login: invalid payload: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid login payload.")
		span.SetStatus(codes.Error, "invalid-payload")
		h.countLogin("bad_request")
		return
	}

	var identifier, password string
	if loginReq.Identifier != nil {
		identifier = strings.TrimSpace(*loginReq.Identifier)
	}
	if loginReq.Password != nil {
		password = strings.TrimSpace(*loginReq.Password)
	}
	if identifier == "" || password == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Identifier and password are required.")
		span.SetStatus(codes.Error, "missing-credentials")
		h.countLogin("bad_request")
		return
	}

	cookie, err := h.service.Login(identifier, password, loginReq.RememberMe.Bool())
	switch {
	case errors.Is(err, ErrNotConfigured):
		log.Error("login attempt, but admin credentials are not configured")
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Admin credentials are not configured on the server.")
		span.SetStatus(codes.Error, "not-configured")
		h.countLogin("not_configured")
		return
	case errors.Is(err, ErrInvalidCredentials):
		log.Warnf("login: invalid credentials from %s", pkg.ReadUserIP(r))
		h.recorder.Record(ctx, r, audit.KindLoginFailure, "", "invalid credentials")
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Invalid credentials.")
		span.SetStatus(codes.Error, "invalid-credentials")
		h.countLogin("invalid_credentials")
		return
	case err != nil:
		log.Errorf("login: issue session: %s", err)
		span.RecordError(err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Unable to process login.")
		span.SetStatus(codes.Error, "issue-session")
		h.countLogin("error")
		return
	}

	http.SetCookie(w, cookie)
	h.recorder.Record(ctx, r, audit.KindLoginSuccess, identifier, "")
	h.countLogin("success")
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONOK(w, pkg.OKResponse{OK: true})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	identity := ""
	if session := h.service.Session(r); session != nil {
		identity = session.Identity
	}

	http.SetCookie(w, h.service.Logout())
	h.recorder.Record(ctx, r, audit.KindLogout, identity, "")
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONOK(w, pkg.OKResponse{OK: true})
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session := h.service.Session(r)
	if session == nil {
		pkg.WriteJSONOK(w, SessionResponse{Authenticated: false})
		return
	}

	pkg.WriteJSONOK(w, SessionResponse{
		Authenticated: true,
		Session: &SessionInfo{
			RememberMe: session.RememberMe,
			ExpiresAt:  session.ExpiresAtTime().Format(time.RFC3339),
		},
	})
}

// HandleCsrf exists for clients that probe for a csrf token; the session cookie is SameSite=Lax.
func (h *Handler) HandleCsrf(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONOK(w, CsrfResponse{CsrfToken: nil})
}
