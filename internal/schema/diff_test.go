package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantsync/internal/platform"
)

func intPtr(v int) *int { return &v }

func sampleSchema() []platform.Datapoint {
	return []platform.Datapoint{
		{InternalName: "invoiceNumber", DisplayName: "Invoice Number", Type: "string",
			Rules: []any{map[string]any{"name": "required"}}},
		{
			InternalName: "items",
			Type:         "table",
			DataPoints: []platform.Datapoint{
				{InternalName: "unitPrice", Type: "number"},
			},
		},
	}
}

func TestDiffDatapointsReflexivity(t *testing.T) {
	flat := Flatten(sampleSchema(), "")

	diffs := DiffDatapoints(flat, flat)

	assert.Empty(t, diffs)
}

func TestDiffDatapointsAsymmetryLabels(t *testing.T) {
	shared := platform.Datapoint{InternalName: "B", Type: "string"}
	sourceFlat := map[string]platform.Datapoint{
		"A": {InternalName: "A", Type: "string"},
		"B": shared,
	}
	targetFlat := map[string]platform.Datapoint{
		"B": shared,
		"C": {InternalName: "C", Type: "string"},
	}

	diffs := DiffDatapoints(sourceFlat, targetFlat)

	require.Len(t, diffs, 2)
	byKey := map[string]Difference{}
	for _, d := range diffs {
		byKey[d.Key] = d
	}
	require.Contains(t, byKey, "A")
	assert.Equal(t, AttrEntireDatapoint, byKey["A"].Attribute)
	assert.Equal(t, DiffMissingInTarget, byKey["A"].Detail)
	require.Contains(t, byKey, "C")
	assert.Equal(t, AttrEntireDatapoint, byKey["C"].Attribute)
	assert.Equal(t, DiffExtraInTarget, byKey["C"].Detail)
	assert.NotContains(t, byKey, "B")
}

func TestDiffDatapointsAttributeLevel(t *testing.T) {
	sourceFlat := map[string]platform.Datapoint{
		"total": {InternalName: "total", DisplayName: "Total", Type: "number"},
	}
	targetFlat := map[string]platform.Datapoint{
		"total": {InternalName: "total", DisplayName: "Grand Total", Type: "string"},
	}

	diffs := DiffDatapoints(sourceFlat, targetFlat)

	require.Len(t, diffs, 2)
	attrs := map[string]bool{}
	for _, d := range diffs {
		assert.Equal(t, "total", d.Key)
		assert.NotEmpty(t, d.Detail)
		attrs[d.Attribute] = true
	}
	assert.True(t, attrs["displayName"])
	assert.True(t, attrs["type"])
}

func TestDiffDatapointsOrderInsensitiveCollections(t *testing.T) {
	sourceFlat := map[string]platform.Datapoint{
		"total": {InternalName: "total", Rules: []any{
			map[string]any{"name": "required"},
			map[string]any{"name": "numeric"},
		}},
	}
	targetFlat := map[string]platform.Datapoint{
		"total": {InternalName: "total", Rules: []any{
			map[string]any{"name": "numeric"},
			map[string]any{"name": "required"},
		}},
	}

	diffs := DiffDatapoints(sourceFlat, targetFlat)

	assert.Empty(t, diffs, "reordered nested collections must compare equal")
}

func TestDiffDatapointsNoAttributeNoiseForOneSidedKeys(t *testing.T) {
	sourceFlat := map[string]platform.Datapoint{
		"only": {InternalName: "only", DisplayName: "Only", Type: "string",
			Rules: []any{"a", "b"}},
	}

	diffs := DiffDatapoints(sourceFlat, map[string]platform.Datapoint{})

	// a single whole-datapoint record, not one per attribute
	require.Len(t, diffs, 1)
	assert.Equal(t, AttrEntireDatapoint, diffs[0].Attribute)
	assert.Equal(t, DiffMissingInTarget, diffs[0].Detail)
}

func TestDiffDatapointsAbsentVersusPresentAttribute(t *testing.T) {
	sourceFlat := map[string]platform.Datapoint{
		"total": {InternalName: "total", Rules: []any{map[string]any{"name": "required"}}},
	}
	targetFlat := map[string]platform.Datapoint{
		"total": {InternalName: "total"},
	}

	diffs := DiffDatapoints(sourceFlat, targetFlat)

	require.Len(t, diffs, 1)
	assert.Equal(t, "rules", diffs[0].Attribute)
	assert.NotEmpty(t, diffs[0].Detail)
}

func TestMetadataOf(t *testing.T) {
	p := &platform.Project{
		ID:                "p1",
		Name:              "Invoices",
		ExtractionModelID: "model-1",
		Completion:        "manual",
		Duplicates:        "allow",
		RetentionDays:     intPtr(90),
		Members:           map[string]any{"allow": "all"},
		OCR:               map[string]any{"features": []any{"tables"}},
	}

	meta := MetadataOf(p)

	assert.Equal(t, "model-1", meta.ExtractionModelID)
	assert.Equal(t, 90, meta.RetentionDays)
	assert.Equal(t, []any{"tables"}, meta.Features)
}

func TestDiffMetadata(t *testing.T) {
	source := ProjectMetadata{
		ExtractionModelID: "model-1",
		RetentionDays:     180,
		Duplicates:        "allow",
		Completion:        "manual",
	}
	target := ProjectMetadata{
		ExtractionModelID: "model-2",
		RetentionDays:     180,
		Duplicates:        "allow",
		Completion:        "automatic",
	}

	diffs := DiffMetadata(source, target)

	require.Len(t, diffs, 2)
	fields := map[string]MetadataDifference{}
	for _, d := range diffs {
		fields[d.Field] = d
	}
	require.Contains(t, fields, "extractionModelId")
	assert.Equal(t, "model-1", fields["extractionModelId"].SourceValue)
	assert.Equal(t, "model-2", fields["extractionModelId"].TargetValue)
	require.Contains(t, fields, "completion")
}

func TestDiffMetadataReflexivity(t *testing.T) {
	meta := ProjectMetadata{
		ExtractionModelID: "model-1",
		Members:           map[string]any{"allow": "all"},
		Features:          []any{"tables", "handwriting"},
	}

	assert.Empty(t, DiffMetadata(meta, meta))
}
