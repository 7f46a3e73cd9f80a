package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/config"
	"github.com/ekaya-inc/ekaya-console/pkg/logging"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// backendProbeTimeout bounds the back-end check done by /health.
const backendProbeTimeout = 5 * time.Second

// BackendProber reads the back-end's public configuration.
type BackendProber interface {
	GetConfig(ctx context.Context) (*models.BackendConfig, error)
}

// HealthResponse contains service health status.
type HealthResponse struct {
	Status  string         `json:"status"`
	Backend *BackendHealth `json:"backend,omitempty"`
}

// BackendHealth reports whether the back-end answered.
type BackendHealth struct {
	Reachable     bool   `json:"reachable"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Error         string `json:"error,omitempty"`
}

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	prober BackendProber
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. prober may be nil, in which
// case /health does not check the back-end.
func NewHealthHandler(cfg *config.Config, prober BackendProber, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, prober: prober, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// Returns 503 when the back-end cannot be reached.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "ok"}
	status := http.StatusOK

	if h.prober != nil {
		ctx, cancel := context.WithTimeout(r.Context(), backendProbeTimeout)
		defer cancel()

		backendCfg, err := h.prober.GetConfig(ctx)
		if err != nil {
			response.Status = "degraded"
			response.Backend = &BackendHealth{Error: logging.SanitizeError(err)}
			status = http.StatusServiceUnavailable
			h.logger.Warn("Back-end health check failed", zap.String("error", response.Backend.Error))
		} else {
			response.Backend = &BackendHealth{Reachable: true, DefaultBranch: backendCfg.DefaultBranch()}
		}
	}

	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping requests.
// Returns detailed service information including version and environment.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "ekaya-console",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
