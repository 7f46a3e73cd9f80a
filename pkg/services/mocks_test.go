package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// mockBackendClient answers GraphQL queries by operation name.
type mockBackendClient struct {
	mu        sync.Mutex
	responses map[string]string // operation name -> JSON payload
	errs      map[string]error  // operation name -> error
	calls     []mockQueryCall

	schema    *models.SchemaSet
	schemaErr error
	schemaN   int

	menu    []models.MenuItem
	menuErr error
}

type mockQueryCall struct {
	op        string
	variables map[string]any
}

func newMockBackendClient(schema *models.SchemaSet) *mockBackendClient {
	return &mockBackendClient{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		schema:    schema,
	}
}

// operationName returns the name following the leading "query" keyword.
func operationName(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '(' || r == '{'
	})
	if len(fields) < 2 || fields[0] != "query" {
		return ""
	}
	return fields[1]
}

func (m *mockBackendClient) Query(ctx context.Context, rc models.ResolutionContext, query string, variables map[string]any) (json.RawMessage, error) {
	op := operationName(query)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mockQueryCall{op: op, variables: variables})

	if err, ok := m.errs[op]; ok {
		return nil, err
	}
	resp, ok := m.responses[op]
	if !ok {
		return nil, errors.New("unexpected query " + op)
	}
	return json.RawMessage(resp), nil
}

func (m *mockBackendClient) GetSchema(ctx context.Context, rc models.ResolutionContext) (*models.SchemaSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaN++
	if m.schemaErr != nil {
		return nil, m.schemaErr
	}
	return m.schema, nil
}

func (m *mockBackendClient) GetMenu(ctx context.Context, rc models.ResolutionContext) ([]models.MenuItem, error) {
	if m.menuErr != nil {
		return nil, m.menuErr
	}
	return m.menu, nil
}

func (m *mockBackendClient) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (m *mockBackendClient) lastCall(op string) (mockQueryCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].op == op {
			return m.calls[i], true
		}
	}
	return mockQueryCall{}, false
}

var _ BackendClient = (*mockBackendClient)(nil)

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

// testSchemaSet returns a device kind with its profile and a location
// hierarchy.
func testSchemaSet() *models.SchemaSet {
	set := &models.SchemaSet{
		Hash: "abc",
		Nodes: []models.NodeSchema{
			{
				Kind:  "InfraDevice",
				Label: "Device",
				Icon:  "mdi:server",
				Attributes: []models.FieldSchema{
					{Name: "name", Kind: models.KindText, OrderWeight: intPtr(1000)},
					{Name: "description", Kind: models.KindText, Optional: true, OrderWeight: intPtr(2000)},
					{Name: "asn", Kind: models.KindNumber, Optional: true},
					{Name: "enabled", Kind: models.KindBoolean, HasDefault: true, DefaultValue: true},
					{Name: "password", Kind: models.KindPassword, Optional: true},
				},
				Relationships: []models.FieldSchema{
					{Name: "site", Kind: models.KindRelationshipOne, Peer: "LocationSite", RelationshipKind: models.RelationshipAttribute, Optional: true},
					{Name: "profiles", Kind: models.KindRelationshipMany, Peer: "ProfileInfraDevice", RelationshipKind: models.RelationshipProfile},
				},
			},
			{
				Kind:      "LocationSite",
				Label:     "Site",
				Hierarchy: "LocationGeneric",
			},
		},
		Generics: []models.NodeSchema{
			{Kind: "LocationGeneric", Label: "Location", Hierarchy: "LocationGeneric"},
		},
		Profiles: []models.NodeSchema{
			{
				Kind: "ProfileInfraDevice",
				Attributes: []models.FieldSchema{
					{Name: models.ProfileNameField, Kind: models.KindText},
					{Name: models.ProfilePriorityField, Kind: models.KindNumber},
					{Name: "description", Kind: models.KindText, Optional: true},
					{Name: "asn", Kind: models.KindNumber, Optional: true},
				},
			},
		},
	}
	set.MarkProfiles()
	return set
}
