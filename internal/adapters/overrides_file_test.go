package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqforge/internal/types"
)

func TestLoadOverrides(t *testing.T) {
	content := `overrides:
  - dependency: numpy
    action: force
    value: "1.21.0"
    reason: "3.x not released"
    owner: platform-team
    expires_at: "2026-12-31"
  - dependency: torch
    action: block
    reason: license review pending
    owner: legal
`
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	adapter := NewOverridesFileAdapter()
	overrides, err := adapter.LoadOverrides(path)
	require.NoError(t, err)

	expected := []types.OverrideDirective{
		{
			Dependency: "numpy",
			Action:     "force",
			Value:      "1.21.0",
			Reason:     "3.x not released",
			Owner:      "platform-team",
			ExpiresAt:  "2026-12-31",
		},
		{
			Dependency: "torch",
			Action:     "block",
			Reason:     "license review pending",
			Owner:      "legal",
		},
	}
	if diff := cmp.Diff(expected, overrides); diff != "" {
		t.Fatalf("unexpected overrides (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	adapter := NewOverridesFileAdapter()
	_, err := adapter.LoadOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestLoadOverridesInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("overrides: [bad"), 0644))
	adapter := NewOverridesFileAdapter()
	_, err := adapter.LoadOverrides(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
