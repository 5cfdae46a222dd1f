package ports

import "runepkg/internal/types"

// UpdatePolicyPort decides whether an update candidate is held back.
type UpdatePolicyPort interface {
	Ignores(kind types.UpdateKind, name string) bool
}
