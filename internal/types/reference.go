package types

// PackageReference is a single package dependency declared by a project
// file. Version is already resolved and interpolated.
type PackageReference struct {
	ID      string `json:"id" yaml:"id" toml:"id"`
	Version string `json:"version" yaml:"version" toml:"version"`
}

// PropertySet holds MSBuild property values used for placeholder expansion.
type PropertySet map[string]string

// CentralVersions maps a package id to the version declared in a central
// package-version catalog.
type CentralVersions map[string]string
