package adapters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolchainAdapter_Missing(t *testing.T) {
	adapter := ToolchainAdapter{LookPath: func(file string) (string, error) {
		if file == "makepkg" || file == "vercmp" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + file, nil
	}}
	assert.Equal(t, []string{"makepkg"}, adapter.Missing(RequiredTools))
	assert.Equal(t, []string{"vercmp"}, adapter.Missing(OptionalTools))
	assert.Empty(t, adapter.Missing(nil))
}

func TestToolchainAdapter_FindsShell(t *testing.T) {
	assert.Empty(t, NewToolchainAdapter().Missing([]string{"sh"}))
}
