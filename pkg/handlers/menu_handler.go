package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
	"github.com/ekaya-inc/ekaya-console/pkg/services"
)

// MenuHandler serves the navigation menu.
type MenuHandler struct {
	menuService services.MenuService
	logger      *zap.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(menuService services.MenuService, logger *zap.Logger) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		logger:      logger,
	}
}

// RegisterRoutes registers the menu handler's routes on the given mux.
func (h *MenuHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/menu", h.Get)
}

// Get handles GET /api/menu
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc := models.GetResolutionContext(r.Context())

	items, err := h.menuService.GetMenu(r.Context(), rc)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to load menu", err, zap.String("branch", rc.Key()))
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}

	writeData(w, h.logger, items)
}
