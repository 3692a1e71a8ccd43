package home

import (
	"net/http"

	errorsfeature "github.com/cinnalovers/secgruposet/internal/app/features/errors"
	"go.uber.org/zap"
)

// Handler serves the service landing document.
type Handler struct {
	Service  string
	Backends []string
	Log      *zap.Logger
}

func NewHandler(service string, backends []string, logger *zap.Logger) *Handler {
	return &Handler{
		Service:  service,
		Backends: backends,
		Log:      logger,
	}
}

type welcome struct {
	Message   string   `json:"message"`
	Service   string   `json:"service"`
	Backends  []string `json:"backends"`
	Endpoints []string `json:"endpoints"`
}

var endpoints = []string{
	"GET  /health",
	"POST /api/security/gruposet/crud?ProcessType=&LoggedUser=&DBServer=",
	"GET  /api/security/gruposet/getall",
	"GET  /api/security/gruposet/getbyid",
	"POST /api/security/gruposet/addone",
	"POST /api/security/gruposet/updateone",
	"POST /api/security/gruposet/deleteone",
	"POST /api/security/gruposet/deletehard",
	"GET  /api/security/gruposet/bitacora",
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	backends := h.Backends
	if backends == nil {
		backends = []string{}
	}
	errorsfeature.RenderJSON(w, http.StatusOK, welcome{
		Message:   "Welcome to the " + h.Service + " API",
		Service:   h.Service,
		Backends:  backends,
		Endpoints: endpoints,
	})
}
