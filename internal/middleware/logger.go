package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"FCCMonitorAPI/internal/logger"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// Hijack lets websocket upgrades pass through the logging wrapper.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			if rw.statusCode >= http.StatusInternalServerError {
				log.Error("%s %s %d %dms", r.Method, r.URL.Path, rw.statusCode, duration.Milliseconds())
				return
			}

			log.Info("%s %s %d %dms %d bytes",
				r.Method,
				r.URL.Path,
				rw.statusCode,
				duration.Milliseconds(),
				rw.bytesWritten,
			)
		})
	}
}
