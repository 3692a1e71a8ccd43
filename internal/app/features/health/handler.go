package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/cinnalovers/secgruposet/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pinger is anything that can check its connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Backends map[string]Pinger
	Log      *zap.Logger
}

// NewHandler constructs a health Handler over the named backends.
func NewHandler(backends map[string]Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Backends: backends,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends"`
	Message  string            `json:"message,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backends":{"mongodb":"connected","azure":"connected"} }
//
// When any backend fails its ping: 503 and
//
//	{ "status":"error", "message":"Backend unavailable: azure",
//	  "backends":{"mongodb":"connected","azure":"disconnected"},
//	  "errors":{"azure":"…"} }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Backends: make(map[string]string, len(h.Backends)),
	}

	var mu sync.Mutex
	failed := map[string]string{}
	g, gctx := errgroup.WithContext(ctx)
	for name, p := range h.Backends {
		g.Go(func() error {
			err := p.Ping(gctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.Log.Error("health-check: backend ping failed", zap.String("backend", name), zap.Error(err))
				resp.Backends[name] = "disconnected"
				failed[name] = err.Error()
				return nil
			}
			resp.Backends[name] = "connected"
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for n := range failed {
			names = append(names, n)
		}
		sort.Strings(names)
		resp.Status = "error"
		resp.Message = "Backend unavailable: " + names[0]
		for _, n := range names[1:] {
			resp.Message += ", " + n
		}
		resp.Errors = failed
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_ = json.NewEncoder(w).Encode(resp)
}
