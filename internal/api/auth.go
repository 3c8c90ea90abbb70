package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/RowanDark/cipherlab/internal/logging"
)

// requireToken enforces the static bearer token when one is configured.
func (s *Server) requireToken(next http.Handler) http.Handler {
	if s.token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			s.deny(r, "missing bearer token")
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			s.deny(r, "invalid token")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) deny(r *http.Request, reason string) {
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: logging.RequestIDFromContext(r.Context()),
		EventType: logging.EventAuthDenied,
		Decision:  logging.DecisionDeny,
		Reason:    reason,
		Metadata:  map[string]any{"path": r.URL.Path, "remote": r.RemoteAddr},
	})
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
