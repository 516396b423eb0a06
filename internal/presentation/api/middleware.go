package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

func (app *Application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", r.RemoteAddr),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		}

		switch {
		case status >= http.StatusInternalServerError:
			app.logger.Error("Request error", fields...)
		case status >= http.StatusBadRequest:
			app.logger.Warn("Request", fields...)
		default:
			app.logger.Info("Request", fields...)
		}
	})
}

func (app *Application) enableCors(next http.Handler) http.Handler {
	allowAny := len(app.config.HTTP.AllowedOrigins) == 0 || slices.Contains(app.config.HTTP.AllowedOrigins, "*")
	headers := strings.Join(app.config.HTTP.AllowedHeaders, ", ")
	if headers == "" {
		headers = "Content-Type, Authorization"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case origin == "":
		case allowAny:
			w.Header().Set("Access-Control-Allow-Origin", origin)
		case slices.Contains(app.config.HTTP.AllowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Add("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", headers)

		// allow preflight requests from the browser
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sourceKey prefers the configured source header, for deployments behind a
// proxy that stamps the client identity.
func (app *Application) sourceKey(r *http.Request) string {
	if h := app.config.RateLimiter.SourceHeaderKey; h != "" {
		if v := r.Header.Get(h); v != "" {
			return "src:" + v
		}
	}
	return "ip:" + middlewares.ClientIP(r)
}
