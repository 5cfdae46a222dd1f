package app

import (
	"fmt"
	"io"
	"path/filepath"

	"runepkg/internal/core"
	"runepkg/internal/types"
)

// failureHint pairs a batch failure reason with a follow-up suggestion.
type failureHint struct {
	Reason string
	Format func(name string, buildDir string) string
}

var failureHints = []failureHint{
	{
		Reason: core.ReasonNotFound,
		Format: func(name string, _ string) string {
			return fmt.Sprintf("hint: %s is not in the AUR; if it is a repository package use pacman -S %s", name, name)
		},
	},
	{
		Reason: core.ReasonClone,
		Format: func(name string, _ string) string {
			return fmt.Sprintf("hint: the source repository for %s could not be cloned; check connectivity and the package base name", name)
		},
	},
	{
		Reason: core.ReasonBuild,
		Format: func(name string, buildDir string) string {
			return fmt.Sprintf("hint: the working directory for %s was kept in %s; remove it with runepkg clean %s", name, filepath.Join(buildDir, name), name)
		},
	},
	{
		Reason: core.ReasonNoArtifacts,
		Format: func(name string, buildDir string) string {
			return fmt.Sprintf("hint: makepkg finished for %s but left no package in %s", name, filepath.Join(buildDir, name))
		},
	},
	{
		Reason: core.ReasonInstall,
		Format: func(name string, _ string) string {
			return fmt.Sprintf("hint: pacman refused to install %s; look for file conflicts or missing dependencies above", name)
		},
	},
}

// batchHints returns one hint per failed item whose reason has a known
// follow-up.
func batchHints(report types.BatchReport, buildDir string) []string {
	var hints []string
	for _, failure := range report.Failed {
		for _, hint := range failureHints {
			if hint.Reason == failure.Reason {
				hints = append(hints, hint.Format(failure.Name, buildDir))
				break
			}
		}
	}
	return hints
}

// EmitHints writes hint messages to w.
func EmitHints(w io.Writer, hints []string) {
	for _, h := range hints {
		fmt.Fprintln(w, h)
	}
}
