// internal/app/features/gruposets/routes.go
package gruposets

import "github.com/go-chi/chi/v5"

// Routes returns the record controller subrouter. Mount it at
// /api/security/gruposet.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// READ
	r.Get("/getall", h.ServeGetAll)
	r.Get("/getbyid", h.ServeGetByID)

	// WRITE
	r.Post("/addone", h.HandleAddOne)
	r.Post("/updateone", h.HandleUpdateOne)
	r.Post("/deleteone", h.HandleDeleteOne)
	r.Post("/deletehard", h.HandleDeleteHard)

	return r
}
