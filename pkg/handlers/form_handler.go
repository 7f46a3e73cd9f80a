package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
	"github.com/ekaya-inc/ekaya-console/pkg/services"
)

// FormRequestBody for POST /api/forms/{kind}
type FormRequestBody struct {
	ObjectID   string   `json:"object_id,omitempty"`
	ProfileIDs []string `json:"profile_ids,omitempty"`
	IsFilter   bool     `json:"is_filter,omitempty"`
}

// FormHandler serves resolved create, edit and filter forms.
type FormHandler struct {
	formService services.FormService
	logger      *zap.Logger
}

// NewFormHandler creates a new form handler.
func NewFormHandler(formService services.FormService, logger *zap.Logger) *FormHandler {
	return &FormHandler{
		formService: formService,
		logger:      logger,
	}
}

// RegisterRoutes registers the form handler's routes on the given mux.
func (h *FormHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/forms/{kind}", h.GetForm)
}

// GetForm handles POST /api/forms/{kind}
// An empty body requests a create form without profiles.
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	var body FormRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	req := models.FormRequest{
		Kind:       r.PathValue("kind"),
		ObjectID:   body.ObjectID,
		ProfileIDs: body.ProfileIDs,
		IsFilter:   body.IsFilter,
	}
	rc := models.GetResolutionContext(r.Context())

	form, err := h.formService.GetForm(r.Context(), rc, req)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build form", err,
			zap.String("kind", req.Kind),
			zap.String("object_id", req.ObjectID),
			zap.String("branch", rc.Key()))
		return
	}

	writeData(w, h.logger, form)
}
