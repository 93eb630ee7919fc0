package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantsync/internal/platform"
)

// fakeTenant is an in-memory tenant API backing one platform.Client in tests.
type fakeTenant struct {
	mux *http.ServeMux

	projects map[string]map[string]any
	schemas  map[string]string
	routings []map[string]any

	createdProjects []map[string]any
	createdRoutings []map[string]any
}

func newFakeTenant(t *testing.T, scope string) (*fakeTenant, *platform.Client) {
	t.Helper()
	ft := &fakeTenant{
		mux:      http.NewServeMux(),
		projects: map[string]map[string]any{},
		schemas:  map[string]string{},
	}

	ft.mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "t", "token_type": "Bearer", "expires_in": 3600, "scope": scope,
		})
	})
	ft.mux.HandleFunc("GET /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		p, ok := ft.projects[r.PathValue("id")]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(p)
	})
	ft.mux.HandleFunc("GET /projects/{id}/schema", func(w http.ResponseWriter, r *http.Request) {
		s, ok := ft.schemas[r.PathValue("id")]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, s)
	})
	ft.mux.HandleFunc("POST /projects", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		ft.createdProjects = append(ft.createdProjects, payload)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":   fmt.Sprintf("new-%d", len(ft.createdProjects)),
			"name": payload["name"],
		})
	})
	ft.mux.HandleFunc("GET /routings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": ft.routings})
	})
	ft.mux.HandleFunc("GET /routings/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, rule := range ft.routings {
			if rule["id"] == r.PathValue("id") {
				json.NewEncoder(w).Encode(rule)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
	ft.mux.HandleFunc("POST /routings", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		ft.createdRoutings = append(ft.createdRoutings, payload)
		json.NewEncoder(w).Encode(map[string]any{
			"id": fmt.Sprintf("newrule-%d", len(ft.createdRoutings)),
		})
	})

	server := httptest.NewServer(ft.mux)
	t.Cleanup(server.Close)
	return ft, platform.NewClient(server.URL, "id", "secret")
}

func newTestSession(t *testing.T, sourceScope, targetScope string) (*fakeTenant, *fakeTenant, *Session) {
	t.Helper()
	sourceTenant, source := newFakeTenant(t, sourceScope)
	targetTenant, target := newFakeTenant(t, targetScope)
	session, err := NewSession(context.Background(), source, target)
	require.NoError(t, err)
	return sourceTenant, targetTenant, session
}

func intPtr(n int) *int { return &n }

func TestBuildClonePayloadDefaults(t *testing.T) {
	details := &platform.Project{ID: "p1", Name: "Invoices"}
	var schema platform.Schema
	require.NoError(t, json.Unmarshal([]byte(`{"dataPoints":[]}`), &schema))

	payload := BuildClonePayload(details, &schema, CloneOptions{ModelID: "model-7", NamePrefix: "copy-"})

	assert.Equal(t, "copy-Invoices", payload.Name)
	assert.Equal(t, "model-7", payload.ExtractionModelID)
	assert.Equal(t, "manual", payload.Completion)
	assert.Equal(t, "allow", payload.Duplicates)
	assert.Equal(t, 180, payload.RetentionDays)
	assert.Equal(t, map[string]any{"allow": "all"}, payload.Members)
	assert.NotNil(t, payload.OCR)
}

func TestBuildClonePayloadPreservesSourceValues(t *testing.T) {
	details := &platform.Project{
		ID:                "p1",
		Name:              "Invoices",
		Note:              "prod pipeline",
		ExtractionModelID: "source-model",
		Completion:        "auto",
		Duplicates:        "fail",
		RetentionDays:     intPtr(30),
		Members:           map[string]any{"allow": "list", "ids": []any{"u1"}},
		OCR:               map[string]any{"features": []any{"tables"}},
	}
	var schema platform.Schema
	require.NoError(t, json.Unmarshal([]byte(`{"dataPoints":[]}`), &schema))

	payload := BuildClonePayload(details, &schema, CloneOptions{ModelID: "model-7"})

	assert.Equal(t, "Invoices", payload.Name)
	assert.Equal(t, "prod pipeline", payload.Note)
	assert.Equal(t, "auto", payload.Completion)
	assert.Equal(t, "fail", payload.Duplicates)
	assert.Equal(t, 30, payload.RetentionDays)
	// the model binding and the member list never carry over
	assert.Equal(t, "model-7", payload.ExtractionModelID)
	assert.Equal(t, map[string]any{"allow": "all"}, payload.Members)
	assert.Equal(t, map[string]any{"features": []any{"tables"}}, payload.OCR)
}

func TestCloneProjectsRequiresModelID(t *testing.T) {
	_, _, session := newTestSession(t, "projects.read", "projects.read projects.write")

	_, _, err := session.CloneProjects(context.Background(), []string{"p1"}, CloneOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction model id")
}

func TestCloneProjectsRequiresWriteScope(t *testing.T) {
	_, _, session := newTestSession(t, "projects.read", "projects.read")

	_, _, err := session.CloneProjects(context.Background(), []string{"p1"}, CloneOptions{ModelID: "m"})

	var scopeErr *platform.ScopeError
	require.ErrorAs(t, err, &scopeErr)
}

func TestCloneProjectsPartialBatch(t *testing.T) {
	sourceTenant, targetTenant, session := newTestSession(t,
		"projects.read", "projects.read projects.write")

	sourceTenant.projects["p1"] = map[string]any{"id": "p1", "name": "Invoices"}
	sourceTenant.schemas["p1"] = `{"dataPoints":[{"internalName":"total","type":"number"}]}`
	// p2's schema read fails mid-batch
	sourceTenant.projects["p2"] = map[string]any{"id": "p2", "name": "Orders"}
	sourceTenant.projects["p3"] = map[string]any{"id": "p3", "name": "Receipts"}
	sourceTenant.schemas["p3"] = `{"dataPoints":[]}`

	idMap, outcomes, err := session.CloneProjects(context.Background(),
		[]string{"p1", "p2", "p3"}, CloneOptions{ModelID: "m1"})

	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, StatusOK, outcomes[0].Status)
	assert.Equal(t, StatusFailed, outcomes[1].Status)
	assert.Contains(t, outcomes[1].Reason, "schema")
	assert.Equal(t, StatusOK, outcomes[2].Status)

	// the failing project is absent from the map, the rest went through
	assert.Len(t, idMap, 2)
	assert.Contains(t, idMap, "p1")
	assert.Contains(t, idMap, "p3")
	assert.NotContains(t, idMap, "p2")
	assert.Len(t, targetTenant.createdProjects, 2)

	okCount, skipped, failed := Counts(outcomes)
	assert.Equal(t, 2, okCount)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 1, failed)
	assert.True(t, Failed(outcomes))
}

func TestCloneProjectsSubmitsSchemaVerbatim(t *testing.T) {
	sourceTenant, targetTenant, session := newTestSession(t,
		"projects.read", "projects.read projects.write")

	rawSchema := `{"dataPoints":[{"internalName":"total","type":"number","vendorHint":"keep-me"}]}`
	sourceTenant.projects["p1"] = map[string]any{"id": "p1", "name": "Invoices"}
	sourceTenant.schemas["p1"] = rawSchema

	_, _, err := session.CloneProjects(context.Background(), []string{"p1"}, CloneOptions{ModelID: "m1"})
	require.NoError(t, err)
	require.Len(t, targetTenant.createdProjects, 1)

	var want any
	require.NoError(t, json.Unmarshal([]byte(rawSchema), &want))
	assert.Equal(t, want, targetTenant.createdProjects[0]["schema"])
}

func TestCloneProjectsSkipsIncompleteRecords(t *testing.T) {
	sourceTenant, _, session := newTestSession(t,
		"projects.read", "projects.read projects.write")

	sourceTenant.projects["p1"] = map[string]any{"id": "p1"} // no name

	idMap, outcomes, err := session.CloneProjects(context.Background(), []string{"p1"}, CloneOptions{ModelID: "m1"})

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Empty(t, idMap)
}

func TestSaveLoadIDMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idmap.json")
	idMap := map[string]string{"p1": "new-1", "p2": "new-2"}

	require.NoError(t, SaveIDMap(path, "run-1", idMap))

	loaded, err := LoadIDMap(path)
	require.NoError(t, err)
	assert.Equal(t, idMap, loaded)
}

func TestLoadIDMapRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idmap.json")
	require.NoError(t, SaveIDMap(path, "run-1", map[string]string{}))

	_, err := LoadIDMap(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no project mappings")
}
