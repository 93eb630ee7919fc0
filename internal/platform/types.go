package platform

import (
	"encoding/json"
	"fmt"
)

// tokenResponse is the body returned by POST /auth/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Project is a configured extraction pipeline belonging to a tenant.
// RetentionDays is a pointer so a missing field can be told apart from zero;
// the clone path defaults it to 180 when absent.
type Project struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Note              string         `json:"note,omitempty"`
	ExtractionModelID string         `json:"extractionModelId,omitempty"`
	Completion        string         `json:"completion,omitempty"`
	Duplicates        string         `json:"duplicates,omitempty"`
	RetentionDays     *int           `json:"retentionDays,omitempty"`
	IsLive            *bool          `json:"isLive,omitempty"`
	Members           map[string]any `json:"members,omitempty"`
	OCR               map[string]any `json:"ocr,omitempty"`
}

// Datapoint is one schema field definition. Nested children live under
// DataPoints; leaves have none. Rules, Normalization, Derivation and Source
// are loosely typed on the wire, so they stay dynamic here and are only
// inspected structurally by the differ.
type Datapoint struct {
	InternalName  string      `json:"internalName,omitempty"`
	DisplayName   string      `json:"displayName,omitempty"`
	Type          string      `json:"type,omitempty"`
	Rules         any         `json:"rules,omitempty"`
	Normalization any         `json:"normalization,omitempty"`
	Derivation    any         `json:"derivation,omitempty"`
	Source        any         `json:"source,omitempty"`
	DataPoints    []Datapoint `json:"dataPoints,omitempty"`
}

// Schema is the datapoint tree of a project. The raw response bytes are kept
// so that cloning submits the schema byte-for-byte as the source returned it.
type Schema struct {
	DataPoints []Datapoint `json:"dataPoints"`

	raw json.RawMessage
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	type alias Schema
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Schema(a)
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (s Schema) MarshalJSON() ([]byte, error) {
	if s.raw != nil {
		return s.raw, nil
	}
	type alias Schema
	return json.Marshal(alias(s))
}

// RoutingRule forwards documents from one project to another. Only the
// fields this tool touches are typed; everything else the platform returns is
// carried through Extra so a recreated rule keeps attributes we do not model.
type RoutingRule struct {
	ID                string `json:"-"`
	Name              string `json:"-"`
	FromProjectID     string `json:"-"`
	ToProjectID       string `json:"-"`
	PostRoutingAction string `json:"-"`
	Active            bool   `json:"-"`
	RoutingNode       any    `json:"-"`
	CreatedBy         string `json:"-"`
	CreatedAt         string `json:"-"`
	UpdatedAt         string `json:"-"`

	Extra map[string]any `json:"-"`
}

func (r *RoutingRule) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	take := func(key string) (any, bool) {
		v, ok := m[key]
		if ok {
			delete(m, key)
		}
		return v, ok
	}
	str := func(key string) string {
		v, _ := take(key)
		s, _ := v.(string)
		return s
	}
	r.ID = str("id")
	r.Name = str("name")
	r.FromProjectID = str("fromProjectId")
	r.ToProjectID = str("toProjectId")
	r.PostRoutingAction = str("postRoutingAction")
	if v, ok := take("active"); ok {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("routing rule %q: active is not a boolean", r.ID)
		}
		r.Active = b
	}
	r.RoutingNode, _ = take("routingNode")
	r.CreatedBy = str("createdBy")
	r.CreatedAt = str("createdAt")
	r.UpdatedAt = str("updatedAt")
	r.Extra = m
	return nil
}

func (r RoutingRule) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+10)
	for k, v := range r.Extra {
		m[k] = v
	}
	if r.ID != "" {
		m["id"] = r.ID
	}
	if r.Name != "" {
		m["name"] = r.Name
	}
	if r.FromProjectID != "" {
		m["fromProjectId"] = r.FromProjectID
	}
	if r.ToProjectID != "" {
		m["toProjectId"] = r.ToProjectID
	}
	if r.PostRoutingAction != "" {
		m["postRoutingAction"] = r.PostRoutingAction
	}
	m["active"] = r.Active
	if r.RoutingNode != nil {
		m["routingNode"] = r.RoutingNode
	}
	if r.CreatedBy != "" {
		m["createdBy"] = r.CreatedBy
	}
	if r.CreatedAt != "" {
		m["createdAt"] = r.CreatedAt
	}
	if r.UpdatedAt != "" {
		m["updatedAt"] = r.UpdatedAt
	}
	return json.Marshal(m)
}

// StripServerFields clears the server-assigned fields that must not appear in
// a create payload.
func (r *RoutingRule) StripServerFields() {
	r.ID = ""
	r.CreatedAt = ""
	r.UpdatedAt = ""
	delete(r.Extra, "id")
	delete(r.Extra, "createdAt")
	delete(r.Extra, "updatedAt")
}

// Company is one tenant on the platform.
type Company struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ProjectPage is one page of GET /projects.
type ProjectPage struct {
	Data       []Project `json:"data"`
	TotalCount int       `json:"totalCount"`
}

// RoutingPage is one page of GET /routings.
type RoutingPage struct {
	Data       []RoutingRule `json:"data"`
	TotalCount int           `json:"totalCount"`
}

// CompanyPage is one page of GET /companies.
type CompanyPage struct {
	Data []Company `json:"data"`
}
