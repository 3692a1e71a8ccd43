// internal/app/features/bitacoras/routes.go
package bitacoras

import "github.com/go-chi/chi/v5"

// Routes returns the bitácora subrouter; mount it at
// /api/security/gruposet/bitacora.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
