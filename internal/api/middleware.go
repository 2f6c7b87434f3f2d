package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/careerlens/careerlens-api/internal/metrics"
)

const dbUnavailableMessage = "Database not connected. Please configure DATABASE_URL in .env file or start a local PostgreSQL."

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// requireDatabase short-circuits with 503 while the monitor reports the
// database as disconnected. List routes also return an empty data array.
func (s *Server) requireDatabase(list bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.monitor == nil || s.monitor.Connected() {
				next.ServeHTTP(w, r)
				return
			}

			resp := apiResponse{Success: false, Message: dbUnavailableMessage}
			if list {
				resp.Data = []any{}
			}
			writeJSON(w, http.StatusServiceUnavailable, resp)
		})
	}
}

// recoverer turns a panic into a 500 envelope. The stack is attached
// outside production.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil || rec == http.ErrAbortHandler {
				if rec != nil {
					panic(rec)
				}
				return
			}

			stack := debug.Stack()
			slog.Error("panic recovered",
				"error", fmt.Sprint(rec),
				"path", r.URL.Path,
				"request_id", requestID(r),
				"stack", string(stack),
			)

			resp := apiResponse{Success: false, Message: "Internal server error"}
			if !s.config.Server.IsProduction() {
				resp.Stack = string(stack)
			}
			writeJSON(w, http.StatusInternalServerError, resp)
		}()

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request counts and latency by route pattern
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		metrics.RequestsInFlight.Inc()
		defer metrics.RequestsInFlight.Dec()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// timeout bounds request handling. Websocket upgrades are long-lived and
// pass through untouched.
func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		timed := middleware.Timeout(d)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}
