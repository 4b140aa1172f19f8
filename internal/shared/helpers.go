// Package shared provides common utility functions used across multiple
// packages in the msbuild-packages codebase.
package shared

import (
	"fmt"
	"strings"

	"msbuild-packages/internal/types"
)

// NormalizePackageID lowercases and trims a NuGet package id. NuGet ids
// compare case-insensitively.
func NormalizePackageID(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ParseProperties turns Name=Value pairs into a PropertySet. Later pairs
// override earlier ones.
func ParseProperties(pairs []string) (types.PropertySet, error) {
	props := types.PropertySet{}
	for _, pair := range pairs {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid property %q, expected Name=Value", pair)
		}
		props[name] = value
	}
	return props, nil
}

// MergeProperties returns a new PropertySet holding base overlaid with
// overrides.
func MergeProperties(base types.PropertySet, overrides types.PropertySet) types.PropertySet {
	merged := make(types.PropertySet, len(base)+len(overrides))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}
