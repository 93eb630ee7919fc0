package setup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Agent is one prompting agent. Prompt is free text that may embed
// underscore-delimited 24-hex-char company-id tokens; Version is a numeric
// string on the wire but occasionally arrives as a bare number.
type Agent struct {
	ID        string `json:"-"`
	Name      string `json:"-"`
	Prompt    string `json:"-"`
	Version   string `json:"-"`
	CompanyID string `json:"-"`

	Extra map[string]any `json:"-"`
}

func (a *Agent) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	str := func(key string) string {
		v, ok := m[key]
		if !ok {
			return ""
		}
		delete(m, key)
		switch val := v.(type) {
		case string:
			return val
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
		return fmt.Sprintf("%v", v)
	}
	a.ID = str("id")
	a.Name = str("name")
	a.Prompt = str("prompt")
	a.Version = str("version")
	a.CompanyID = str("companyId")
	a.Extra = m
	return nil
}

func (a Agent) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(a.Extra)+5)
	for k, v := range a.Extra {
		m[k] = v
	}
	m["id"] = a.ID
	if a.Name != "" {
		m["name"] = a.Name
	}
	m["prompt"] = a.Prompt
	m["version"] = a.Version
	if a.CompanyID != "" {
		m["companyId"] = a.CompanyID
	}
	return json.Marshal(m)
}

// GetAgents lists the prompting agents of a company.
func (c *Client) GetAgents(ctx context.Context, companyID string) ([]Agent, error) {
	query := url.Values{}
	query.Set("companyId", companyID)

	var raw json.RawMessage
	if err := c.get(ctx, "/v1/prompting-settings/agents", query, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch agents: %w", err)
	}
	return listOrEnvelope[Agent](raw)
}

// UpdateAgent PUTs an agent body back to the Setup API.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, agent Agent) (map[string]any, error) {
	var out map[string]any
	if err := c.put(ctx, "/v1/prompting-settings/agents/"+url.PathEscape(agentID), agent, &out); err != nil {
		return nil, fmt.Errorf("failed to update agent %s: %w", agentID, err)
	}
	return out, nil
}

// hexToken matches candidate company-id tokens. The delimiter contract is
// checked around each candidate: the platform embeds company ids as 24 hex
// chars bounded by underscores (or line end on the right). Do not widen this
// without confirming the platform's ID embedding convention.
var hexToken = regexp.MustCompile(`[a-fA-F0-9]{24}`)

// RewritePrompt replaces every underscore-delimited 24-hex-char token equal
// to sourceCompanyID with targetCompanyID. Tokens with other values, or
// candidates without the underscore delimiters, are left alone.
func RewritePrompt(prompt, sourceCompanyID, targetCompanyID string) string {
	matches := hexToken.FindAllStringIndex(prompt, -1)
	if len(matches) == 0 {
		return prompt
	}

	var b strings.Builder
	b.Grow(len(prompt))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start == 0 || prompt[start-1] != '_' {
			continue
		}
		if end < len(prompt) && prompt[end] != '_' && prompt[end] != '\n' {
			continue
		}
		if prompt[start:end] != sourceCompanyID {
			continue
		}
		b.WriteString(prompt[last:start])
		b.WriteString(targetCompanyID)
		last = end
	}
	b.WriteString(prompt[last:])
	return b.String()
}

// BumpVersion increments an agent version string: "1.0" becomes "2.0", a
// bare "3" becomes "4.0". Anything unparsable resets to "2.0".
func BumpVersion(version string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(version), 64)
	if err != nil {
		return "2.0"
	}
	return fmt.Sprintf("%d.0", int(f)+1)
}

// AgentOutcome is the per-agent result of a CopyAgents run.
type AgentOutcome struct {
	Agent   string `json:"agent"`
	ID      string `json:"id"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// CopyAgents fetches the target company's agents, rewrites any embedded
// source-company-id tokens in their prompts, bumps each agent's version and
// PUTs it back. Per-agent failures are recorded and do not stop the batch.
func (c *Client) CopyAgents(ctx context.Context, sourceCompanyID, targetCompanyID string) ([]AgentOutcome, error) {
	agents, err := c.GetAgents(ctx, targetCompanyID)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("no agents found for company %s", targetCompanyID)
	}

	outcomes := make([]AgentOutcome, 0, len(agents))
	for i, agent := range agents {
		agent.Prompt = RewritePrompt(agent.Prompt, sourceCompanyID, targetCompanyID)
		agent.Version = BumpVersion(agent.Version)

		name := agent.Name
		if name == "" {
			name = agent.ID
		}
		outcome := AgentOutcome{Agent: name, ID: agent.ID, Version: agent.Version, Status: "OK"}
		if _, err := c.UpdateAgent(ctx, agent.ID, agent); err != nil {
			reason := c.LastError
			if reason == "" {
				reason = err.Error()
			}
			outcome.Status = "FAILED: " + reason
		}
		outcomes = append(outcomes, outcome)

		log.Info().
			Int("agent", i+1).
			Int("total", len(agents)).
			Str("id", agent.ID).
			Str("status", outcome.Status).
			Msg("Updated agent prompt")
	}
	return outcomes, nil
}
