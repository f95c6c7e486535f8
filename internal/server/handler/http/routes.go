package http

import (
	"net/http"

	"github.com/atinyakov/seedkeeper/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// credential store API.
//
// Routes:
//
//	POST|GET|DELETE /api/wallet/seed
//	POST|GET|DELETE /api/wallet/phrase
//	POST|GET|DELETE /api/wallet/birthday
//	PUT|GET|DELETE  /api/wallet/keys
//	POST            /api/wallet/wipe
//	POST|GET|DELETE /api/identities/{id}
//	GET             /api/identities/{id}/state
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json"): rejects non-JSON request bodies
//  2. WithRequestLogging(logger): logs incoming requests
//  3. CertAuth: enforces TLS client certificate auth
func NewRouter(
	walletHandler *WalletHandler,
	identityHandler *IdentityHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.CertAuth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/wallet", func(r chi.Router) {
			r.Post("/seed", walletHandler.ImportSeed)
			r.Get("/seed", walletHandler.ExportSeed)
			r.Delete("/seed", walletHandler.DeleteSeed)

			r.Post("/phrase", walletHandler.ImportPhrase)
			r.Get("/phrase", walletHandler.ExportPhrase)
			r.Delete("/phrase", walletHandler.DeletePhrase)

			r.Post("/birthday", walletHandler.ImportBirthday)
			r.Get("/birthday", walletHandler.ExportBirthday)
			r.Delete("/birthday", walletHandler.DeleteBirthday)

			r.Put("/keys", walletHandler.SaveKeys)
			r.Get("/keys", walletHandler.GetKeys)
			r.Delete("/keys", walletHandler.DeleteKeys)

			r.Post("/wipe", walletHandler.Wipe)
		})

		r.Route("/identities/{id}", func(r chi.Router) {
			r.Post("/", identityHandler.Save)
			r.Get("/", identityHandler.Get)
			r.Delete("/", identityHandler.Delete)
			r.Get("/state", identityHandler.State)
		})
	})

	return r
}
