package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

func TestSchemaHandler_GetKind(t *testing.T) {
	svc := &mockSchemaService{schema: &models.SchemaSet{
		Nodes: []models.NodeSchema{{
			Kind:       "InfraDevice",
			Label:      "Device",
			Attributes: []models.FieldSchema{{Name: "name", Kind: models.KindText}},
		}},
	}}
	h := NewSchemaHandler(svc, zap.NewNop())

	rec := serve(t, h.RegisterRoutes, httptest.NewRequest(http.MethodGet, "/api/schema/InfraDevice", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Kind       string `json:"kind"`
			Attributes []struct {
				Name string `json:"name"`
				Kind string `json:"kind"`
			} `json:"attributes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "InfraDevice", resp.Data.Kind)
	require.Len(t, resp.Data.Attributes, 1)
	assert.Equal(t, "Text", resp.Data.Attributes[0].Kind)

	rec = serve(t, h.RegisterRoutes, httptest.NewRequest(http.MethodGet, "/api/schema/InfraUnknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchemaHandler_BackendError(t *testing.T) {
	h := NewSchemaHandler(&mockSchemaService{err: apperrors.ErrUnauthorized}, zap.NewNop())

	rec := serve(t, h.RegisterRoutes, httptest.NewRequest(http.MethodGet, "/api/schema/InfraDevice", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSchemaHandler_Refresh(t *testing.T) {
	svc := &mockSchemaService{}
	h := NewSchemaHandler(svc, zap.NewNop())

	rec := serve(t, h.RegisterRoutes, httptest.NewRequest(http.MethodPost, "/api/schema/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.invalidated)
}
