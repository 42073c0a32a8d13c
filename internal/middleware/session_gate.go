package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/2beens/mongoextract/internal/auth"
	"github.com/2beens/mongoextract/internal/telemetry/tracing"
	"github.com/2beens/mongoextract/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	AdminPath       = "/admin"
	LoginPath       = auth.DefaultLoginPath
	apiPathPrefix   = "/api/"
	authPathPrefix  = "/api/auth/"
	fromQueryParam  = "from"
	unauthorizedMsg = "Unauthorized"
)

//go:generate mockgen -source=$GOFILE -destination=session_checker_mock_test.go -package=middleware_test

// sessionChecker is satisfied by *auth.Service.
type sessionChecker interface {
	Session(r *http.Request) *auth.SessionPayload
}

type SessionGate struct {
	sessions             sessionChecker
	staticPathsPrefixes  []string
	staticPaths          map[string]bool
	publicAPIPathPrefix  string
	protectedPagesPrefix string
}

func NewSessionGate(sessions sessionChecker) *SessionGate {
	return &SessionGate{
		sessions: sessions,
		staticPathsPrefixes: []string{
			"/static/",
		},
		staticPaths: map[string]bool{
			"/favicon.ico": true,
			"/robots.txt":  true,
		},
		publicAPIPathPrefix:  authPathPrefix,
		protectedPagesPrefix: AdminPath,
	}
}

func (g *SessionGate) isStatic(path string) bool {
	if g.staticPaths[path] {
		return true
	}
	for _, prefix := range g.staticPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *SessionGate) isProtectedPage(path string) bool {
	return path == g.protectedPagesPrefix || strings.HasPrefix(path, g.protectedPagesPrefix+"/")
}

func (g *SessionGate) isProtectedAPI(path string) bool {
	return strings.HasPrefix(path, apiPathPrefix) && !strings.HasPrefix(path, g.publicAPIPathPrefix)
}

// LoginRedirectURL is where an unauthenticated request for path is sent.
func LoginRedirectURL(path string) string {
	if path == "" || path == AdminPath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{fromQueryParam: []string{path}}.Encode()
}

func (g *SessionGate) Check() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if g.isStatic(path) {
				next.ServeHTTP(w, r)
				return
			}

			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.sessionGate")
			defer span.End()
			span.SetAttributes(attribute.String("path", path))

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			switch {
			case path == LoginPath || strings.HasPrefix(path, LoginPath+"/"):
				if g.sessions.Session(r) != nil {
					http.Redirect(w, r, AdminPath, http.StatusTemporaryRedirect)
					span.SetStatus(codes.Ok, "already-logged-in")
					return
				}
			case g.isProtectedPage(path):
				session := g.sessions.Session(r)
				if session == nil {
					log.Tracef("[session gate] no session => %s", path)
					http.Redirect(w, r, LoginRedirectURL(path), http.StatusTemporaryRedirect)
					span.SetStatus(codes.Error, "redirect-to-login")
					return
				}
				r = r.WithContext(auth.ContextWithSession(r.Context(), session))
			case g.isProtectedAPI(path):
				session := g.sessions.Session(r)
				if session == nil {
					log.Tracef("[session gate] unauthorized api call => %s", path)
					pkg.WriteJSONError(w, http.StatusUnauthorized, unauthorizedMsg)
					span.SetStatus(codes.Error, "unauthorized")
					return
				}
				r = r.WithContext(auth.ContextWithSession(r.Context(), session))
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
