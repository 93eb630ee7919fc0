package migrate

import (
	"encoding/json"
	"fmt"
	"os"
)

// idMapFile is the on-disk shape of a saved project ID map, so a clone run
// and a later routing-rule run can compose across CLI invocations. This is
// operator-side state; nothing is ever persisted to the platform.
type idMapFile struct {
	RunID    string            `json:"runId"`
	Projects map[string]string `json:"projects"`
}

// SaveIDMap writes the project ID map produced by a clone run to path.
func SaveIDMap(path, runID string, idMap map[string]string) error {
	data, err := json.MarshalIndent(idMapFile{RunID: runID, Projects: idMap}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode id map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write id map: %w", err)
	}
	return nil
}

// LoadIDMap reads a previously saved project ID map from path.
func LoadIDMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read id map: %w", err)
	}
	var file idMapFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse id map: %w", err)
	}
	if len(file.Projects) == 0 {
		return nil, fmt.Errorf("id map %s contains no project mappings", path)
	}
	return file.Projects, nil
}
