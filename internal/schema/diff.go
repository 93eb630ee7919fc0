package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tenantsync/internal/platform"
)

// Labels used for whole-datapoint differences, named from the target's
// perspective: a key the target lacks is "missing in target", a key only the
// target has is "extra in target".
const (
	AttrEntireDatapoint = "Entire datapoint"
	DiffMissingInTarget = "Missing in target"
	DiffExtraInTarget   = "Extra in target"
)

// Difference is one datapoint-level finding for a compared project pair.
type Difference struct {
	TargetProject string `json:"targetProject,omitempty"`
	Key           string `json:"dataPoint"`
	Attribute     string `json:"attribute"`
	Detail        string `json:"difference"`
}

// MetadataDifference is one project-level configuration finding.
type MetadataDifference struct {
	TargetProject string `json:"targetProject,omitempty"`
	Field         string `json:"field"`
	SourceValue   any    `json:"sourceValue"`
	TargetValue   any    `json:"targetValue"`
}

// comparedAttributes is the fixed attribute set inspected for keys present on
// both sides.
var comparedAttributes = []string{
	"internalName", "displayName", "type", "rules", "normalization", "derivation", "source",
}

func attributeValue(dp platform.Datapoint, attr string) any {
	switch attr {
	case "internalName":
		return dp.InternalName
	case "displayName":
		return dp.DisplayName
	case "type":
		return dp.Type
	case "rules":
		return dp.Rules
	case "normalization":
		return dp.Normalization
	case "derivation":
		return dp.Derivation
	case "source":
		return dp.Source
	}
	return nil
}

// canonical renders a dynamic JSON value deterministically so slices can be
// sorted before an order-insensitive comparison.
func canonical(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

var deepOpts = cmp.Options{
	cmpopts.EquateEmpty(),
	cmpopts.SortSlices(func(a, b any) bool { return canonical(a) < canonical(b) }),
}

// deepDiff compares two dynamic attribute values structurally, ignoring the
// order of nested collections. It returns a rendered description of the
// differing paths, or "" when the values are equal.
func deepDiff(src, tgt any) string {
	return cmp.Diff(src, tgt, deepOpts)
}

// DiffDatapoints compares two flattened schemas. Keys on one side only yield
// a single whole-datapoint record; keys on both sides get an attribute-level
// structural comparison. Output order is not defined.
func DiffDatapoints(sourceFlat, targetFlat map[string]platform.Datapoint) []Difference {
	var diffs []Difference

	allKeys := make(map[string]bool, len(sourceFlat)+len(targetFlat))
	for key := range sourceFlat {
		allKeys[key] = true
	}
	for key := range targetFlat {
		allKeys[key] = true
	}

	for key := range allKeys {
		srcDP, inSource := sourceFlat[key]
		tgtDP, inTarget := targetFlat[key]
		switch {
		case !inTarget:
			diffs = append(diffs, Difference{
				Key:       key,
				Attribute: AttrEntireDatapoint,
				Detail:    DiffMissingInTarget,
			})
		case !inSource:
			diffs = append(diffs, Difference{
				Key:       key,
				Attribute: AttrEntireDatapoint,
				Detail:    DiffExtraInTarget,
			})
		default:
			for _, attr := range comparedAttributes {
				if detail := deepDiff(attributeValue(srcDP, attr), attributeValue(tgtDP, attr)); detail != "" {
					diffs = append(diffs, Difference{
						Key:       key,
						Attribute: attr,
						Detail:    detail,
					})
				}
			}
		}
	}
	return diffs
}

// ProjectMetadata is the fixed configuration field set compared between two
// project records. Features is lifted out of the ocr object.
type ProjectMetadata struct {
	ExtractionModelID any `json:"extractionModelId"`
	Members           any `json:"members"`
	RetentionDays     any `json:"retentionDays"`
	Duplicates        any `json:"duplicates"`
	Completion        any `json:"completion"`
	Features          any `json:"features"`
}

// MetadataOf extracts the compared metadata fields from a project record.
func MetadataOf(p *platform.Project) ProjectMetadata {
	meta := ProjectMetadata{}
	if p == nil {
		return meta
	}
	if p.ExtractionModelID != "" {
		meta.ExtractionModelID = p.ExtractionModelID
	}
	if p.Members != nil {
		meta.Members = p.Members
	}
	if p.RetentionDays != nil {
		meta.RetentionDays = *p.RetentionDays
	}
	if p.Duplicates != "" {
		meta.Duplicates = p.Duplicates
	}
	if p.Completion != "" {
		meta.Completion = p.Completion
	}
	if p.OCR != nil {
		meta.Features = p.OCR["features"]
	}
	return meta
}

// metadataFields fixes the field order of DiffMetadata output.
var metadataFields = []struct {
	name string
	get  func(ProjectMetadata) any
}{
	{"extractionModelId", func(m ProjectMetadata) any { return m.ExtractionModelID }},
	{"members", func(m ProjectMetadata) any { return m.Members }},
	{"retentionDays", func(m ProjectMetadata) any { return m.RetentionDays }},
	{"duplicates", func(m ProjectMetadata) any { return m.Duplicates }},
	{"completion", func(m ProjectMetadata) any { return m.Completion }},
	{"features", func(m ProjectMetadata) any { return m.Features }},
}

// DiffMetadata compares the fixed metadata field set between two projects.
// Unlike the datapoint comparison this is a plain equality check, with no
// order-insensitivity for nested collections.
func DiffMetadata(source, target ProjectMetadata) []MetadataDifference {
	var diffs []MetadataDifference
	for _, field := range metadataFields {
		srcVal := field.get(source)
		tgtVal := field.get(target)
		if !reflect.DeepEqual(srcVal, tgtVal) {
			diffs = append(diffs, MetadataDifference{
				Field:       field.name,
				SourceValue: srcVal,
				TargetValue: tgtVal,
			})
		}
	}
	return diffs
}
