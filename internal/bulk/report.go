package bulk

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// WriteJSON writes the full report, including every difference record.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteYAML writes the full report in YAML.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteSummaryCSV writes one row per compared pair with its status and
// difference count, the shape operators re-import into a spreadsheet.
func (r *Report) WriteSummaryCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Source Project Name", "Source Project ID",
		"Target Project Name", "Target Project ID",
		"Status", "Number of Differences", "Error Message",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	for _, result := range r.Results {
		status := "Identical"
		count := len(result.Datapoints) + len(result.Metadata)
		switch {
		case result.Error != "":
			status = "Error"
			count = 0
		case result.HasDifferences != nil && *result.HasDifferences:
			status = "Differences Found"
		}
		row := []string{
			result.SourceProjectName, result.SourceProjectID,
			result.TargetProjectName, result.TargetProjectID,
			status, strconv.Itoa(count), result.Error,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
