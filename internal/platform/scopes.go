package platform

import (
	"fmt"
	"strings"
)

// Scopes the primary API issues for this tool.
const (
	ScopeProjectsRead  = "projects.read"
	ScopeProjectsWrite = "projects.write"
	ScopeRoutingsRead  = "routings.read"
	ScopeRoutingsWrite = "routings.write"
)

// ScopeError reports scopes that were required but not granted. It is raised
// before any write request is attempted.
type ScopeError struct {
	Missing []string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("token is missing required scopes: %s", strings.Join(e.Missing, ", "))
}

// Scopes returns the scopes granted with the current token.
func (c *Client) Scopes() []string {
	out := make([]string, len(c.scopes))
	copy(out, c.scopes)
	return out
}

// MissingScopes returns the required scopes not present in granted, in the
// order they were required.
func MissingScopes(granted, required []string) []string {
	have := make(map[string]bool, len(granted))
	for _, s := range granted {
		have[s] = true
	}
	var missing []string
	for _, s := range required {
		if !have[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

// RequireScopes returns a ScopeError when any of the given scopes was not
// granted to this client's token.
func (c *Client) RequireScopes(required ...string) error {
	if missing := MissingScopes(c.scopes, required); len(missing) > 0 {
		return &ScopeError{Missing: missing}
	}
	return nil
}
