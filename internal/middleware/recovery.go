package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/2beens/mongoextract/internal/telemetry/metrics"
	"github.com/2beens/mongoextract/pkg"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				log.Errorf("http: panic serving %s: %v\n%s", req.URL.Path, r, debug.Stack())
				sentry.CurrentHub().Recover(r)
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteJSONError(respWriter, http.StatusInternalServerError, "internal error")
			}()

			// handler call
			next.ServeHTTP(respWriter, req)
		})
	}
}
