package adapters

import (
	"os/exec"

	"runepkg/internal/ports"
)

// RequiredTools must be on PATH for install and update batches.
var RequiredTools = []string{"git", "makepkg", "pacman", "sudo"}

// OptionalTools degrade gracefully when absent.
var OptionalTools = []string{"vercmp"}

type ToolchainAdapter struct {
	LookPath func(file string) (string, error)
}

func NewToolchainAdapter() ToolchainAdapter {
	return ToolchainAdapter{LookPath: exec.LookPath}
}

func (a ToolchainAdapter) Missing(tools []string) []string {
	lookPath := a.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var missing []string
	for _, tool := range tools {
		if _, err := lookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

var _ ports.ToolchainPort = ToolchainAdapter{}
