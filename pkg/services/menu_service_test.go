package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

func newTestMenuService(client *mockBackendClient, menuFile string) MenuService {
	logger := zap.NewNop()
	return NewMenuService(client, NewSchemaService(client, 0, logger), menuFile, logger)
}

func TestMenuService_DecoratesBackendMenu(t *testing.T) {
	client := newMockBackendClient(testSchemaSet())
	client.menu = []models.MenuItem{
		{
			Title: "Objects",
			Children: []models.MenuItem{
				{Kind: "InfraDevice"},
				{Kind: "LocationSite", Title: "All sites", Path: "/sites"},
				{Kind: "InfraUnknown"},
			},
		},
		{Title: "Docs", Path: "https://docs.example.com"},
	}
	svc := newTestMenuService(client, "")

	menu, err := svc.GetMenu(context.Background(), models.ResolutionContext{})
	require.NoError(t, err)
	require.Len(t, menu, 2)

	children := menu[0].Children
	require.Len(t, children, 3)

	assert.Equal(t, models.MenuItem{
		Title:    "Devices",
		Path:     "/objects/InfraDevice",
		IconName: "mdi:server",
		Kind:     "InfraDevice",
	}, children[0])

	assert.Equal(t, "All sites", children[1].Title)
	assert.Equal(t, "/sites", children[1].Path)
	assert.Equal(t, "/api/tree/LocationSite", children[1].TreePath)

	assert.Empty(t, children[2].Title, "unknown kinds keep what the source provided")
	assert.Equal(t, "/objects/InfraUnknown", children[2].Path)

	assert.Equal(t, models.MenuItem{Title: "Docs", Path: "https://docs.example.com"}, menu[1])

	assert.Empty(t, client.menu[0].Children[0].Title, "source menu must not be modified")
}

func TestMenuService_FromFile(t *testing.T) {
	menuFile := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(menuFile, []byte(`
- title: Infrastructure
  icon_name: mdi:lan
  children:
    - kind: InfraDevice
    - kind: LocationGeneric
`), 0o600))

	client := newMockBackendClient(testSchemaSet())
	client.menuErr = apperrors.ErrBackendUnavailable
	svc := newTestMenuService(client, menuFile)

	menu, err := svc.GetMenu(context.Background(), models.ResolutionContext{})
	require.NoError(t, err)
	require.Len(t, menu, 1)

	assert.Equal(t, "Infrastructure", menu[0].Title)
	assert.Equal(t, "mdi:lan", menu[0].IconName)
	require.Len(t, menu[0].Children, 2)
	assert.Equal(t, "Devices", menu[0].Children[0].Title)
	assert.Equal(t, "Locations", menu[0].Children[1].Title)
	assert.Equal(t, "/api/tree/LocationGeneric", menu[0].Children[1].TreePath)
}

func TestMenuService_InvalidFile(t *testing.T) {
	menuFile := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(menuFile, []byte("title: [unterminated"), 0o600))

	svc := newTestMenuService(newMockBackendClient(testSchemaSet()), menuFile)

	_, err := svc.GetMenu(context.Background(), models.ResolutionContext{})
	require.Error(t, err)
}

func TestMenuService_MissingFile(t *testing.T) {
	svc := newTestMenuService(newMockBackendClient(testSchemaSet()), filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := svc.GetMenu(context.Background(), models.ResolutionContext{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMenuService_BackendError(t *testing.T) {
	client := newMockBackendClient(testSchemaSet())
	client.menuErr = apperrors.ErrBackendUnavailable
	svc := newTestMenuService(client, "")

	_, err := svc.GetMenu(context.Background(), models.ResolutionContext{})
	require.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
}

func TestMenuService_WithoutSchema(t *testing.T) {
	client := newMockBackendClient(nil)
	client.schemaErr = apperrors.ErrBackendUnavailable
	client.menu = []models.MenuItem{{Kind: "InfraDevice", Title: "Devices"}}
	svc := newTestMenuService(client, "")

	menu, err := svc.GetMenu(context.Background(), models.ResolutionContext{})
	require.NoError(t, err)

	assert.Equal(t, client.menu, menu)
}
