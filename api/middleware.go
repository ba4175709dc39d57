package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

func withMiddleware(next http.Handler) http.Handler {
	return requestID(accessLog(securityHeaders(gzhttp.GzipHandler(next))))
}

// requestID keeps a caller supplied request ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
			req.Header.Set(requestIDHeader, id)
		}
		res.Header().Set(requestIDHeader, id)
		next.ServeHTTP(res, req)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: res}
		next.ServeHTTP(recorder, req)

		entry := log.WithFields(log.Fields{
			"requestId": req.Header.Get(requestIDHeader),
			"method":    req.Method,
			"path":      req.URL.Path,
			"status":    recorder.status,
			"bytes":     recorder.bytes,
			"duration":  time.Since(start),
		})
		if recorder.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
		} else {
			entry.Info("request served")
		}
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		headers := res.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		headers.Set("Cache-Control", "no-store")
		next.ServeHTTP(res, req)
	})
}
