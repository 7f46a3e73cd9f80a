package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
	"github.com/ekaya-inc/ekaya-console/pkg/services"
	"github.com/ekaya-inc/ekaya-console/pkg/session"
)

// TreeResponse for the /api/tree endpoints.
type TreeResponse struct {
	Kind  string            `json:"kind"`
	Nodes []models.TreeNode `json:"nodes"`
}

// TreeHandler serves the per-session navigation trees.
type TreeHandler struct {
	treeService services.TreeService
	logger      *zap.Logger
}

// NewTreeHandler creates a new tree handler.
func NewTreeHandler(treeService services.TreeService, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// RegisterRoutes registers the tree handler's routes on the given mux.
func (h *TreeHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/tree/{kind}"

	mux.HandleFunc("GET "+base, h.Get)
	mux.HandleFunc("DELETE "+base, h.Reset)
	mux.HandleFunc("POST "+base+"/load", h.LoadTopLevel)
	mux.HandleFunc("POST "+base+"/nodes/{id}/expand", h.Expand)
	mux.HandleFunc("POST "+base+"/nodes/{id}/reveal", h.Reveal)
}

type treeOp func(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error)

// Get handles GET /api/tree/{kind}
func (h *TreeHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Failed to read tree", h.treeService.GetTree)
}

// LoadTopLevel handles POST /api/tree/{kind}/load
func (h *TreeHandler) LoadTopLevel(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Failed to load tree", h.treeService.LoadTopLevel)
}

// Expand handles POST /api/tree/{kind}/nodes/{id}/expand
func (h *TreeHandler) Expand(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("id")
	h.serve(w, r, "Failed to expand tree node", func(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error) {
		return h.treeService.ExpandBranch(ctx, rc, sessionID, kind, nodeID)
	})
}

// Reveal handles POST /api/tree/{kind}/nodes/{id}/reveal
func (h *TreeHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("id")
	h.serve(w, r, "Failed to reveal tree node", func(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error) {
		return h.treeService.RevealNode(ctx, rc, sessionID, kind, nodeID)
	})
}

// Reset handles DELETE /api/tree/{kind}
func (h *TreeHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	kind := r.PathValue("kind")
	rc := models.GetResolutionContext(r.Context())

	if err := h.treeService.ResetTree(r.Context(), rc, sessionID, kind); err != nil {
		writeServiceError(w, h.logger, "Failed to reset tree", err, zap.String("kind", kind))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TreeHandler) serve(w http.ResponseWriter, r *http.Request, failure string, op treeOp) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	kind := r.PathValue("kind")
	rc := models.GetResolutionContext(r.Context())

	nodes, err := op(r.Context(), rc, sessionID, kind)
	if err != nil {
		writeServiceError(w, h.logger, failure, err,
			zap.String("kind", kind),
			zap.String("node_id", r.PathValue("id")),
			zap.String("branch", rc.Key()))
		return
	}

	writeData(w, h.logger, TreeResponse{Kind: kind, Nodes: nodes})
}

// sessionID returns the tree session, writing a 401 when there is none.
func (h *TreeHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "no_session", "A session is required for tree navigation"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
	return id, true
}
