package ports

import "runepkg/internal/types"

type ArtifactInspectorPort interface {
	Inspect(path string) (types.ArtifactInfo, error)
}
