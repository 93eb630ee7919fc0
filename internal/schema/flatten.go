// Package schema flattens datapoint trees into a comparable flat keyspace
// and computes field-level differences between two projects.
package schema

import (
	"github.com/tenantsync/internal/platform"
)

// unknownKey stands in for a datapoint that has no internalName. Several
// nameless siblings therefore collide on the same composite key.
const unknownKey = "unknown"

// Flatten linearizes a datapoint tree into a map keyed by composite key: the
// dot-joined chain of internalName from root to node. parentKey is the prefix
// for nodes at this level, empty at the root.
//
// Duplicate composite keys overwrite silently, last one wins. The platform
// guarantees internalName uniqueness within one parent, so collisions only
// happen on malformed schemas; they are not detected here.
func Flatten(nodes []platform.Datapoint, parentKey string) map[string]platform.Datapoint {
	flat := make(map[string]platform.Datapoint)
	for _, dp := range nodes {
		name := dp.InternalName
		if name == "" {
			name = unknownKey
		}
		key := name
		if parentKey != "" {
			key = parentKey + "." + name
		}
		flat[key] = dp
		if len(dp.DataPoints) > 0 {
			for nestedKey, nested := range Flatten(dp.DataPoints, key) {
				flat[nestedKey] = nested
			}
		}
	}
	return flat
}
