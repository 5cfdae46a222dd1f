package shared

import (
	"path/filepath"
	"strings"
)

// DefaultSudoPrompt is passed to sudo with -p so the command runner can
// recognise and drop it from the output stream.
const DefaultSudoPrompt = "[sudo] runepkg password: "

var artifactSuffixes = []string{".pkg.tar.zst", ".pkg.tar.xz", ".pkg.tar.gz", ".pkg.tar"}

// IsPackageArtifact reports whether name looks like a built package archive.
func IsPackageArtifact(name string) bool {
	base := filepath.Base(name)
	for _, suffix := range artifactSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// IsDebugArtifact reports whether name is a split debug-symbol package.
func IsDebugArtifact(name string) bool {
	return strings.Contains(filepath.Base(name), "-debug-")
}
