package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"petrack/internal/platform/logger"
)

// RequestLogger deja en el contexto un logger con el request_id de chi y
// registra una línea por request. Debe ir después de chimw.RequestID.
func RequestLogger(base logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := base.With(logger.Fields{"request_id": chimw.GetReqID(r.Context())})

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := logger.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if status >= http.StatusInternalServerError {
				reqLog.Warn("request served", fields)
				return
			}
			reqLog.Debug("request served", fields)
		})
	}
}
