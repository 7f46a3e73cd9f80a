package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
	"github.com/ekaya-inc/ekaya-console/pkg/services"
)

// SchemaHandler exposes the cached branch schema.
type SchemaHandler struct {
	schemaService services.SchemaService
	logger        *zap.Logger
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(schemaService services.SchemaService, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{
		schemaService: schemaService,
		logger:        logger,
	}
}

// RegisterRoutes registers the schema handler's routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schema/{kind}", h.GetKind)
	mux.HandleFunc("POST /api/schema/refresh", h.Refresh)
}

// GetKind handles GET /api/schema/{kind}
func (h *SchemaHandler) GetKind(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	rc := models.GetResolutionContext(r.Context())

	nodeSchema, err := h.schemaService.GetNodeSchema(r.Context(), rc, kind)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to load schema", err,
			zap.String("kind", kind),
			zap.String("branch", rc.Key()))
		return
	}

	writeData(w, h.logger, nodeSchema)
}

// Refresh handles POST /api/schema/refresh
// Drops every cached schema so the next request refetches it.
func (h *SchemaHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.schemaService.Invalidate()
	h.logger.Info("Schema cache invalidated")

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "schema cache cleared"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
