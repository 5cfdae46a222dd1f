package ports

// BuildRootPort manages the per-package working directories under the
// build root.
type BuildRootPort interface {
	// Dir returns the working directory for name without touching disk.
	Dir(name string) (string, error)

	// Clean removes the working directory for name. A missing directory is
	// not an error.
	Clean(name string) error

	// Reset removes every working directory and recreates an empty root.
	Reset() error
}

// ToolchainPort reports which required external tools are missing.
type ToolchainPort interface {
	Missing(tools []string) []string
}
