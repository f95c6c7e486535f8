// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
)

type ctxKey string

const clientKey ctxKey = "client"

// CertAuth is a middleware that enforces mutual TLS authentication.
//
// Every request must carry a verified client certificate. The Common Name
// (CN) of the certificate identifies the calling collaborator and is stored
// in the request context for audit logging downstream.
func CertAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
			http.Error(w, "no client certificate provided", http.StatusUnauthorized)
			return
		}
		cert := r.TLS.PeerCertificates[0]
		if cert.Subject.CommonName == "" {
			http.Error(w, "client certificate has no common name", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), clientKey, cert.Subject.CommonName)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientFromContext extracts the client name (Common Name from the client
// certificate) from the request context. Returns an empty string if not found.
func GetClientFromContext(ctx context.Context) string {
	val := ctx.Value(clientKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
