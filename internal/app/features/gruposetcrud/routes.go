// internal/app/features/gruposetcrud/routes.go
package gruposetcrud

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter serving the action endpoint. Mount it at
// /api/security/gruposet/crud.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCRUD)
	return r
}
