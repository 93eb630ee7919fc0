package setup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	srcID = "aaaaaaaaaaaaaaaaaaaaaaaa"
	dstID = "bbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestRewritePrompt(t *testing.T) {
	cases := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "token between underscores",
			prompt: "use dataset_" + srcID + "_v2",
			want:   "use dataset_" + dstID + "_v2",
		},
		{
			name:   "token at end of string",
			prompt: "company_" + srcID,
			want:   "company_" + dstID,
		},
		{
			name:   "token at end of line",
			prompt: "company_" + srcID + "\nnext line",
			want:   "company_" + dstID + "\nnext line",
		},
		{
			name:   "no left underscore is left alone",
			prompt: "company " + srcID + "_x",
			want:   "company " + srcID + "_x",
		},
		{
			name:   "no right delimiter is left alone",
			prompt: "company_" + srcID + "x",
			want:   "company_" + srcID + "x",
		},
		{
			name:   "different company id is left alone",
			prompt: "company_" + "cccccccccccccccccccccccc" + "_x",
			want:   "company_" + "cccccccccccccccccccccccc" + "_x",
		},
		{
			name:   "multiple occurrences",
			prompt: "a_" + srcID + "_ and b_" + srcID + "_",
			want:   "a_" + dstID + "_ and b_" + dstID + "_",
		},
		{
			name:   "token at start of string is left alone",
			prompt: srcID + "_x",
			want:   srcID + "_x",
		},
		{
			name:   "no tokens at all",
			prompt: "plain prompt with no ids",
			want:   "plain prompt with no ids",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RewritePrompt(tc.prompt, srcID, dstID))
		})
	}
}

func TestBumpVersion(t *testing.T) {
	assert.Equal(t, "2.0", BumpVersion("1.0"))
	assert.Equal(t, "4.0", BumpVersion("3"))
	assert.Equal(t, "3.0", BumpVersion("2.7"))
	assert.Equal(t, "2.0", BumpVersion(""))
	assert.Equal(t, "2.0", BumpVersion("draft"))
}

func TestAgentJSONRoundTrip(t *testing.T) {
	wire := `{"id":"a1","name":"extractor","prompt":"do things","version":2,"companyId":"c1","temperature":0.4}`

	var agent Agent
	require.NoError(t, json.Unmarshal([]byte(wire), &agent))
	assert.Equal(t, "a1", agent.ID)
	assert.Equal(t, "2", agent.Version)
	assert.Equal(t, 0.4, agent.Extra["temperature"])

	out, err := json.Marshal(agent)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "a1", m["id"])
	assert.Equal(t, "2", m["version"])
	assert.Equal(t, 0.4, m["temperature"])
}

func TestCopyAgents(t *testing.T) {
	var updated []map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/prompting-settings/agents", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "access_token=tok", r.Header.Get("Cookie"))
		assert.Equal(t, dstID, r.URL.Query().Get("companyId"))
		fmt.Fprint(w, `[
			{"id":"a1","name":"extractor","prompt":"use dataset_`+srcID+`_v2","version":"1.0","companyId":"`+dstID+`"},
			{"id":"a2","name":"broken","prompt":"x","version":"1.0","companyId":"`+dstID+`"}
		]`)
	})
	mux.HandleFunc("PUT /v1/prompting-settings/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if r.PathValue("id") == "a2" {
			http.Error(w, "agent is locked", http.StatusConflict)
			return
		}
		updated = append(updated, body)
		fmt.Fprint(w, `{}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "tok")
	outcomes, err := client.CopyAgents(context.Background(), srcID, dstID)

	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "OK", outcomes[0].Status)
	assert.Equal(t, "2.0", outcomes[0].Version)
	assert.True(t, strings.HasPrefix(outcomes[1].Status, "FAILED:"))
	assert.Contains(t, outcomes[1].Status, "agent is locked")

	require.Len(t, updated, 1)
	assert.Equal(t, "use dataset_"+dstID+"_v2", updated[0]["prompt"])
	assert.Equal(t, "2.0", updated[0]["version"])
}

func TestCopyAgentsNoAgents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/prompting-settings/agents", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "tok")
	_, err := client.CopyAgents(context.Background(), srcID, dstID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no agents found")
}

func TestCopyWorkflows(t *testing.T) {
	var created []map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/composite-enrichment-workflows", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, srcID, r.URL.Query().Get("companyId"))
		fmt.Fprint(w, `[{"id":"w1","name":"vendor lookup","companyId":"`+srcID+`","steps":[{"op":"lookup"}],"createdAt":"2024-01-01"}]`)
	})
	mux.HandleFunc("POST /v1/composite-enrichment-workflows", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		created = append(created, body)
		fmt.Fprint(w, `{"id":"w-new"}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "tok")
	outcomes, err := client.CopyWorkflows(context.Background(), srcID, dstID)

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "OK", outcomes[0].Status)
	assert.Equal(t, "vendor lookup", outcomes[0].Workflow)

	require.Len(t, created, 1)
	assert.Equal(t, dstID, created[0]["companyId"])
	assert.NotContains(t, created[0], "id")
	assert.NotContains(t, created[0], "createdAt")
	assert.Equal(t, []any{map[string]any{"op": "lookup"}}, created[0]["steps"])
}

func TestLastErrorTracksFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/prompting-settings", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("companyId") == "bad" {
			http.Error(w, "no settings", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `[{"id":"s1","companyId":"good"}]`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "tok")

	_, err := client.GetPromptingSettings(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, client.LastError, "HTTP 404")

	_, err = client.GetPromptingSettings(context.Background(), "good")
	require.NoError(t, err)
	assert.Empty(t, client.LastError)
}
