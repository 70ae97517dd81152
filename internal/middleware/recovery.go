package middleware

import (
	"net/http"
	"runtime/debug"

	"FCCMonitorAPI/internal/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("PANIC on %s %s: %v", r.Method, r.URL.Path, err)
					log.Error("Stack trace:\n%s", debug.Stack())

					writeJSONError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
