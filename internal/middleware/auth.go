package middleware

import (
	"net/http"
	"strings"

	"FCCMonitorAPI/internal/auth"
	"FCCMonitorAPI/internal/logger"
)

const anonymousSubject = "anonymous"

// Authenticator validates bearer JWTs and stores the caller identity in the
// request context. With auth disabled every caller is an anonymous engineer.
type Authenticator struct {
	secret  []byte
	enabled bool
	log     *logger.Logger
}

func NewAuthenticator(secret string, enabled bool, log *logger.Logger) *Authenticator {
	return &Authenticator{
		secret:  []byte(secret),
		enabled: enabled,
		log:     log,
	}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled {
			ctx := auth.WithIdentity(r.Context(), auth.RoleEngineer, anonymousSubject)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		claims, err := auth.ParseJWT(extractToken(r), a.secret)
		if err != nil {
			a.log.Debug("Rejected %s %s: %v", r.Method, r.URL.Path, err)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		role, _ := auth.NormalizeRole(claims.Role)
		ctx := auth.WithIdentity(r.Context(), role, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects callers whose role ranks below required. It must run
// after Authenticate.
func RequireRole(required auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := auth.RoleFromContext(r.Context())
			if role == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !auth.RoleAtLeast(role, required) {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the Authorization header, falling back to the
// access_token query parameter used by browser websocket clients.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error": "` + message + `"}`))
}
