package ports

// WorkspacePort discovers MSBuild project files (*.csproj, *.vbproj,
// *.fsproj) within workspace roots.
type WorkspacePort interface {
	FindProjects(root string) ([]string, error)
}
