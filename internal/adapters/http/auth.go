package httpadapter

import (
	"net/http"
	"strings"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

// Identity headers set by the upstream auth layer. The core trusts them as
// already authenticated and applies role gating on top.
const (
	actorIDHeader   = "X-Actor-Id"
	actorRoleHeader = "X-Actor-Role"
)

// protect wraps a handler with the service bearer-token check. An empty
// configured token disables the check (local runs, tests).
func (rt *Router) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt.cfg.APIAuthToken != "" && !isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.cfg.APIAuthToken) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

// actor resolves the verified request identity, answering 401/400 itself when
// the identity headers are absent or malformed.
func (rt *Router) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	id := strings.TrimSpace(r.Header.Get(actorIDHeader))
	rawRole := strings.TrimSpace(r.Header.Get(actorRoleHeader))
	if id == "" || rawRole == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "actor identity headers are required"})
		return domain.Actor{}, false
	}

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		writeError(w, err)
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id, Role: role}, true
}

func isAuthorizedBearerHeader(headerValue, expectedToken string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || expectedToken == "" {
		return false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	return token == expectedToken
}
